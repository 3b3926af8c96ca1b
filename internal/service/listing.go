package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"classifieds/internal/domain"
	"classifieds/internal/repository"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

type CreateListingInput struct {
	Title       string
	Description string
	PriceCents  int64
	Category    string
	// PaymentID - оплата продукта extra_slot; такое объявление квоту не расходует,
	// но оплата забирается один раз и только владельцем
	PaymentID string
}

type ListingService interface {
	Create(ctx context.Context, actor domain.Actor, input CreateListingInput) (*domain.Listing, *domain.QuotaSummary, error)
}

type listingService struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	quota       QuotaService
	promotion   PromotionService
	rules       BusinessRules
	clock       clockwork.Clock
	log         logger.Logger
}

func NewListingService(
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	quota QuotaService,
	promotion PromotionService,
	rules BusinessRules,
	clock clockwork.Clock,
	log logger.Logger,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		quota:       quota,
		promotion:   promotion,
		rules:       rules,
		clock:       clock,
		log:         log,
	}
}

func (s *listingService) Create(ctx context.Context, actor domain.Actor, input CreateListingInput) (*domain.Listing, *domain.QuotaSummary, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || input.PriceCents < 0 {
		return nil, nil, apperrors.ErrBadRequest
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user.IsBanned {
		return nil, nil, apperrors.ErrForbidden
	}

	free := s.rules.IsFreeListing(input)
	now := s.clock.Now()
	listingID := uuid.New()

	// Слот резервируется до вставки: Consume и Claim атомарны, поэтому ни квота,
	// ни одна оплата не расходуются дважды
	var summary *domain.QuotaSummary
	if free {
		summary, err = s.quota.Consume(ctx, actor.UserID)
		if err != nil {
			return nil, summary, err
		}
	} else if err := s.paymentRepo.Claim(ctx, input.PaymentID, actor.UserID, domain.ProductExtraSlot, listingID, now); err != nil {
		return nil, nil, err
	}

	listing := &domain.Listing{
		ID:          listingID,
		OwnerID:     actor.UserID,
		Title:       input.Title,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Category:    input.Category,
		Status:      domain.ListingStatusPending,
		IsFree:      free,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		s.rollbackSlot(ctx, actor.UserID, input.PaymentID, listingID, free)
		return nil, nil, err
	}

	if !free {
		if _, err := s.promotion.Grant(ctx, actor, listingID, domain.ProductExtraSlot, input.PaymentID); err != nil {
			s.log.Error("Failed to attach paid slot", "error", err, "listing_id", listingID)
			if delErr := s.listingRepo.Delete(ctx, listingID); delErr != nil {
				s.log.Error("Failed to delete listing without paid slot", "error", delErr, "listing_id", listingID)
			}
			s.rollbackSlot(ctx, actor.UserID, input.PaymentID, listingID, free)
			return nil, nil, err
		}
	}

	s.log.Info("Listing created", "listing_id", listingID, "owner_id", actor.UserID, "free", free)
	return listing, summary, nil
}

// rollbackSlot возвращает бесплатный слот или оплату, если объявление не создано
func (s *listingService) rollbackSlot(ctx context.Context, userID uuid.UUID, paymentID string, listingID uuid.UUID, free bool) {
	if free {
		if err := s.quota.Release(ctx, userID); err != nil {
			s.log.Error("Failed to release quota slot", "error", err, "user_id", userID)
		}
		return
	}
	if err := s.paymentRepo.Release(ctx, paymentID, listingID); err != nil {
		s.log.Error("Failed to release payment", "error", err, "payment_id", paymentID)
	}
}
