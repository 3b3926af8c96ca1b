package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"classifieds/internal/domain"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type listingRepository struct {
	db  DB
	log logger.Logger
}

func NewListingRepository(db DB, log logger.Logger) ListingRepository {
	return &listingRepository{db: db, log: log}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO listings (id, owner_id, title, description, price_cents, category, status, is_free, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		listing.ID, listing.OwnerID, listing.Title, listing.Description, listing.PriceCents,
		listing.Category, listing.Status, listing.IsFree, listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create listing", "error", err, "owner_id", listing.OwnerID)
		return apperrors.StoreError("create listing", err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `
		SELECT id, owner_id, title, description, price_cents, category, status, is_free,
		       is_featured, featured_until, featured_position, bumped_at, created_at, updated_at
		FROM listings
		WHERE id = $1
	`

	l := &domain.Listing{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.PriceCents, &l.Category, &l.Status, &l.IsFree,
		&l.IsFeatured, &l.FeaturedUntil, &l.FeaturedPosition, &l.BumpedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrListingNotFound
		}
		r.log.Error("Failed to get listing", "error", err, "listing_id", id)
		return nil, apperrors.StoreError("get listing", err)
	}
	return l, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	query := `UPDATE listings SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status, at)
	if err != nil {
		r.log.Error("Failed to update listing status", "error", err, "listing_id", id)
		return apperrors.StoreError("update listing status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM listings WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to delete listing", "error", err, "listing_id", id)
		return apperrors.StoreError("delete listing", err)
	}
	return nil
}
