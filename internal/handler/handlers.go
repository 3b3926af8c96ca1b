package handler

import (
	"github.com/jonboulle/clockwork"

	"classifieds/internal/config"
	"classifieds/internal/service"
	"classifieds/pkg/logger"
)

type Handlers struct {
	Health  *HealthHandler
	Cron    *CronHandler
	Listing *ListingHandler
	Quota   *QuotaHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
}

func NewHandlers(services *service.Services, cfg *config.Config, checks map[string]HealthCheck, clock clockwork.Clock, log logger.Logger) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(cfg, checks),
		Cron:    NewCronHandler(services.Promotion, services.Quota, clock, log),
		Listing: NewListingHandler(services.Listing, log),
		Quota:   NewQuotaHandler(services.Quota, log),
		Payment: NewPaymentHandler(services.Promotion, log),
		Admin:   NewAdminHandler(services.Moderation, services.Audit, log),
	}
}
