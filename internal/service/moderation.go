package service

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"classifieds/internal/domain"
	"classifieds/internal/repository"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

// ModerationService - действия администратора; каждое изменение пишется в аудит
type ModerationService interface {
	ModerateListing(ctx context.Context, actor domain.Actor, listingID uuid.UUID, decision domain.ModerationDecision, reason string) (*domain.Listing, error)
	SetUserBanned(ctx context.Context, actor domain.Actor, userID uuid.UUID, banned bool, reason string) error
}

type moderationService struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	audit       AuditService
	clock       clockwork.Clock
	log         logger.Logger
}

func NewModerationService(listingRepo repository.ListingRepository, userRepo repository.UserRepository, audit AuditService, clock clockwork.Clock, log logger.Logger) ModerationService {
	return &moderationService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		audit:       audit,
		clock:       clock,
		log:         log,
	}
}

var decisionActions = map[domain.ModerationDecision]domain.AuditAction{
	domain.DecisionApprove: domain.ActionListingApproved,
	domain.DecisionReject:  domain.ActionListingRejected,
	domain.DecisionRemove:  domain.ActionListingRemoved,
}

func (s *moderationService) ModerateListing(ctx context.Context, actor domain.Actor, listingID uuid.UUID, decision domain.ModerationDecision, reason string) (*domain.Listing, error) {
	status, ok := decision.Status()
	if !ok {
		return nil, apperrors.ErrInvalidDecision
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	previous := listing.Status

	now := s.clock.Now()
	if err := s.listingRepo.UpdateStatus(ctx, listingID, status, now); err != nil {
		return nil, err
	}
	listing.Status = status
	listing.UpdatedAt = now

	s.audit.Record(ctx, newAuditEntry(actor, decisionActions[decision], domain.ResourceListing, listingID.String(),
		map[string]interface{}{"previous_status": previous, "status": status, "reason": reason}))

	return listing, nil
}

func (s *moderationService) SetUserBanned(ctx context.Context, actor domain.Actor, userID uuid.UUID, banned bool, reason string) error {
	if banned && userID == actor.UserID {
		return apperrors.NewAPIError("administrators cannot ban themselves", http.StatusBadRequest)
	}

	if err := s.userRepo.SetBanned(ctx, userID, banned, s.clock.Now()); err != nil {
		return err
	}

	action := domain.ActionUserUnbanned
	if banned {
		action = domain.ActionUserBanned
	}
	s.audit.Record(ctx, newAuditEntry(actor, action, domain.ResourceUser, userID.String(),
		map[string]interface{}{"reason": reason}))

	s.log.Info("User ban state changed", "user_id", userID, "banned", banned, "by", actor.UserID)
	return nil
}
