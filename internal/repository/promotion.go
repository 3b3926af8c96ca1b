package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classifieds/internal/domain"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

type PromotionRepository interface {
	ExpireFeatured(ctx context.Context, now time.Time) (int64, error)
	ExpireAddOns(ctx context.Context, now time.Time) (int64, error)
	ClearBumps(ctx context.Context, cutoff time.Time) (int64, error)

	SetFeatured(ctx context.Context, listingID uuid.UUID, until time.Time) error
	SetBumped(ctx context.Context, listingID uuid.UUID, at time.Time) error
	CreateAddOn(ctx context.Context, addOn *domain.ListingAddOn) error
}

type promotionRepository struct {
	db  DB
	log logger.Logger
}

func NewPromotionRepository(db DB, log logger.Logger) PromotionRepository {
	return &promotionRepository{db: db, log: log}
}

func (r *promotionRepository) ExpireFeatured(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE listings
		SET is_featured = FALSE, featured_until = NULL, featured_position = NULL
		WHERE is_featured = TRUE AND featured_until <= $1
	`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to expire featured listings", "error", err)
		return 0, apperrors.StoreError("expire featured", err)
	}
	return tag.RowsAffected(), nil
}

func (r *promotionRepository) ExpireAddOns(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE listing_add_ons
		SET active = FALSE
		WHERE active = TRUE AND expires_at <= $1
	`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to expire add-ons", "error", err)
		return 0, apperrors.StoreError("expire add-ons", err)
	}
	return tag.RowsAffected(), nil
}

func (r *promotionRepository) ClearBumps(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE listings
		SET bumped_at = NULL
		WHERE bumped_at <= $1
	`

	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to clear bumps", "error", err)
		return 0, apperrors.StoreError("clear bumps", err)
	}
	return tag.RowsAffected(), nil
}

func (r *promotionRepository) SetFeatured(ctx context.Context, listingID uuid.UUID, until time.Time) error {
	query := `
		UPDATE listings
		SET is_featured = TRUE, featured_until = $2
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, listingID, until)
	if err != nil {
		r.log.Error("Failed to feature listing", "error", err, "listing_id", listingID)
		return apperrors.StoreError("feature listing", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrListingNotFound
	}
	return nil
}

func (r *promotionRepository) SetBumped(ctx context.Context, listingID uuid.UUID, at time.Time) error {
	query := `UPDATE listings SET bumped_at = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, listingID, at)
	if err != nil {
		r.log.Error("Failed to bump listing", "error", err, "listing_id", listingID)
		return apperrors.StoreError("bump listing", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrListingNotFound
	}
	return nil
}

func (r *promotionRepository) CreateAddOn(ctx context.Context, addOn *domain.ListingAddOn) error {
	query := `
		INSERT INTO listing_add_ons (id, listing_id, product, payment_id, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		addOn.ID, addOn.ListingID, string(addOn.Product), addOn.PaymentID,
		addOn.Active, addOn.ExpiresAt, addOn.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create add-on", "error", err, "listing_id", addOn.ListingID)
		return apperrors.StoreError("create add-on", err)
	}
	return nil
}
