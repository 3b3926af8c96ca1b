package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"classifieds/internal/config"
	"classifieds/internal/domain"
	"classifieds/internal/metrics"
	"classifieds/internal/repository"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

type PromotionService interface {
	// Sweep снимает истекшие продвижения. Идемпотентен, безопасен при повторных
	// и параллельных вызовах.
	Sweep(ctx context.Context, now time.Time) (*domain.SweepResult, error)
	// Activate вызывается после завершения платежа. Оплата должна принадлежать
	// владельцу объявления, быть завершенной и неиспользованной.
	Activate(ctx context.Context, actor domain.Actor, listingID uuid.UUID, product domain.Product, paymentID string) (*ActivationResult, error)
	// Grant применяет продукт по оплате, которую вызывающий уже забрал через PaymentRepository.Claim
	Grant(ctx context.Context, actor domain.Actor, listingID uuid.UUID, product domain.Product, paymentID string) (*ActivationResult, error)
}

type ActivationResult struct {
	ListingID uuid.UUID      `json:"listing_id"`
	Product   domain.Product `json:"product"`
	ActiveAt  time.Time      `json:"active_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type promotionService struct {
	promotionRepo repository.PromotionRepository
	listingRepo   repository.ListingRepository
	paymentRepo   repository.PaymentRepository
	audit         AuditService
	cfg           config.PromotionConfig
	clock         clockwork.Clock
	metrics       *metrics.Metrics
	log           logger.Logger
}

func NewPromotionService(
	promotionRepo repository.PromotionRepository,
	listingRepo repository.ListingRepository,
	paymentRepo repository.PaymentRepository,
	audit AuditService,
	cfg config.PromotionConfig,
	clock clockwork.Clock,
	m *metrics.Metrics,
	log logger.Logger,
) PromotionService {
	return &promotionService{
		promotionRepo: promotionRepo,
		listingRepo:   listingRepo,
		paymentRepo:   paymentRepo,
		audit:         audit,
		cfg:           cfg,
		clock:         clock,
		metrics:       m,
		log:           log,
	}
}

const (
	sweepFeatured = "featured"
	sweepAddOns   = "add_ons"
	sweepBumps    = "bumps"
)

func (s *promotionService) Sweep(ctx context.Context, now time.Time) (*domain.SweepResult, error) {
	result := &domain.SweepResult{}
	var firstErr error

	// Проходы независимы: ошибка одного не отменяет остальные
	run := func(category string, pass func() (int64, error), dst *int64) {
		n, err := pass()
		if err != nil {
			s.log.Error("Promotion sweep pass failed", "category", category, "error", err)
			s.metrics.SweepFailures.WithLabelValues(category).Inc()
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*dst = n
		s.metrics.PromotionsExpired.WithLabelValues(category).Add(float64(n))
	}

	run(sweepFeatured, func() (int64, error) { return s.promotionRepo.ExpireFeatured(ctx, now) }, &result.ExpiredFeatured)
	run(sweepAddOns, func() (int64, error) { return s.promotionRepo.ExpireAddOns(ctx, now) }, &result.ExpiredAddOns)
	run(sweepBumps, func() (int64, error) { return s.promotionRepo.ClearBumps(ctx, now.Add(-s.cfg.BumpTTL)) }, &result.ClearedBumps)

	s.log.Info("Promotion sweep finished",
		"expired_featured", result.ExpiredFeatured,
		"expired_add_ons", result.ExpiredAddOns,
		"cleared_bumps", result.ClearedBumps,
	)

	if result.ExpiredFeatured+result.ExpiredAddOns+result.ClearedBumps > 0 {
		s.audit.Record(ctx, newAuditEntry(systemActor(), domain.ActionPromotionsSwept, domain.ResourceSystem, "",
			map[string]interface{}{
				"expired_featured": result.ExpiredFeatured,
				"expired_add_ons":  result.ExpiredAddOns,
				"cleared_bumps":    result.ClearedBumps,
			}))
	}

	return result, firstErr
}

func (s *promotionService) Activate(ctx context.Context, actor domain.Actor, listingID uuid.UUID, product domain.Product, paymentID string) (*ActivationResult, error) {
	if !product.Valid() {
		return nil, apperrors.ErrUnknownProduct
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	// Оплату вносит владелец, даже если активирует администратор
	if err := s.paymentRepo.Claim(ctx, paymentID, listing.OwnerID, product, listingID, s.clock.Now()); err != nil {
		return nil, err
	}

	result, err := s.Grant(ctx, actor, listingID, product, paymentID)
	if err != nil {
		if relErr := s.paymentRepo.Release(ctx, paymentID, listingID); relErr != nil {
			s.log.Error("Failed to release payment", "error", relErr, "payment_id", paymentID)
		}
		return nil, err
	}
	return result, nil
}

func (s *promotionService) Grant(ctx context.Context, actor domain.Actor, listingID uuid.UUID, product domain.Product, paymentID string) (*ActivationResult, error) {
	if !product.Valid() {
		return nil, apperrors.ErrUnknownProduct
	}

	now := s.clock.Now()
	result := &ActivationResult{ListingID: listingID, Product: product, ActiveAt: now}
	action := domain.ActionAddOnActivated

	switch {
	case product == domain.ProductFeatured:
		result.ExpiresAt = now.Add(s.cfg.FeaturedDuration)
		if err := s.promotionRepo.SetFeatured(ctx, listingID, result.ExpiresAt); err != nil {
			return nil, err
		}
		action = domain.ActionListingFeatured
	case product == domain.ProductBump:
		result.ExpiresAt = now.Add(s.cfg.BumpTTL)
		if err := s.promotionRepo.SetBumped(ctx, listingID, now); err != nil {
			return nil, err
		}
		action = domain.ActionListingBumped
	case product.IsAddOn():
		result.ExpiresAt = now.Add(s.cfg.AddOnDuration)
		addOn := &domain.ListingAddOn{
			ID:        uuid.New(),
			ListingID: listingID,
			Product:   product,
			PaymentID: paymentID,
			Active:    true,
			ExpiresAt: result.ExpiresAt,
			CreatedAt: now,
		}
		if err := s.promotionRepo.CreateAddOn(ctx, addOn); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, newAuditEntry(actor, domain.ActionPaymentCompleted, domain.ResourcePayment, paymentID,
		map[string]interface{}{"listing_id": listingID.String(), "product": string(product)}))
	s.audit.Record(ctx, newAuditEntry(actor, action, domain.ResourceListing, listingID.String(),
		map[string]interface{}{"product": string(product), "expires_at": result.ExpiresAt}))

	return result, nil
}
