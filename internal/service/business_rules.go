package service

import (
	"classifieds/internal/config"
)

// BusinessRules - тарифы и классификация объявлений (бесплатное / платное)
type BusinessRules interface {
	MaxFreeListings(plan string) int
	IsFreeListing(input CreateListingInput) bool
}

type planRules struct {
	quotas      map[string]int
	defaultPlan string
}

func NewPlanRules(cfg config.QuotaConfig) BusinessRules {
	return &planRules{
		quotas:      cfg.FreeListingsPerPlan,
		defaultPlan: cfg.DefaultPlan,
	}
}

// MaxFreeListings для неизвестного тарифа берет тариф по умолчанию
func (r *planRules) MaxFreeListings(plan string) int {
	if limit, ok := r.quotas[plan]; ok {
		return limit
	}
	return r.quotas[r.defaultPlan]
}

// IsFreeListing - объявление без оплаты расходует бесплатную квоту.
// Сама оплата проверяется при создании через PaymentRepository.Claim.
func (r *planRules) IsFreeListing(input CreateListingInput) bool {
	return input.PaymentID == ""
}

