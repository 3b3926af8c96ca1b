package service

import (
	"github.com/jonboulle/clockwork"

	"classifieds/internal/config"
	"classifieds/internal/metrics"
	"classifieds/internal/repository"
	"classifieds/pkg/logger"
)

type Services struct {
	RateLimit  RateLimitService
	Quota      QuotaService
	Promotion  PromotionService
	Audit      AuditService
	Listing    ListingService
	Moderation ModerationService
	Rules      BusinessRules
}

func NewServices(repos *repository.Repositories, cfg *config.Config, clock clockwork.Clock, m *metrics.Metrics, log logger.Logger) *Services {
	rules := NewPlanRules(cfg.Quota)
	audit := NewAuditService(repos.Audit, clock, m, log)
	quota := NewQuotaService(repos.Quota, rules, audit, clock, m, log)
	promotion := NewPromotionService(repos.Promotion, repos.Listing, repos.Payment, audit, cfg.Promotion, clock, m, log)

	return &Services{
		RateLimit:  NewRateLimitService(repos.RateLimit, clock, cfg.RateLimit.SweepInterval, log),
		Quota:      quota,
		Promotion:  promotion,
		Audit:      audit,
		Listing:    NewListingService(repos.Listing, repos.User, repos.Payment, quota, promotion, rules, clock, log),
		Moderation: NewModerationService(repos.Listing, repos.User, audit, clock, log),
		Rules:      rules,
	}
}
