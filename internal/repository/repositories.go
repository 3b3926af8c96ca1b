package repository

import (
	"github.com/redis/go-redis/v9"

	"classifieds/pkg/logger"
)

type Repositories struct {
	User      UserRepository
	Listing   ListingRepository
	Quota     QuotaRepository
	Promotion PromotionRepository
	Payment   PaymentRepository
	Audit     AuditRepository
	RateLimit RateLimitStore
}

// NewRepositories - rdb может быть nil, тогда окна лимитера живут в памяти процесса
func NewRepositories(db DB, rdb *redis.Client, log logger.Logger) *Repositories {
	repos := &Repositories{
		User:      NewUserRepository(db, log),
		Listing:   NewListingRepository(db, log),
		Quota:     NewQuotaRepository(db, log),
		Promotion: NewPromotionRepository(db, log),
		Payment:   NewPaymentRepository(db, log),
		Audit:     NewAuditRepository(db, log),
	}

	if rdb != nil {
		repos.RateLimit = NewRedisRateLimitStore(rdb, log)
		log.Info("Rate limit store initialized", "backend", "redis")
	} else {
		repos.RateLimit = NewMemoryRateLimitStore()
		log.Info("Rate limit store initialized", "backend", "memory")
	}

	return repos
}
