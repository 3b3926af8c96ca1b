package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classifieds/internal/domain"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

func TestPromotionRepositorySweepPasses(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPromotionRepository(mock, logger.NewNop())
	ctx := context.Background()
	now := time.Date(2024, time.June, 10, 3, 0, 0, 0, time.UTC)
	cutoff := now.Add(-domain.DefaultBumpTTL)

	mock.ExpectExec(regexp.QuoteMeta("WHERE is_featured = TRUE AND featured_until <= $1")).
		WithArgs(now).WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE listing_add_ons")).
		WithArgs(now).WillReturnResult(pgxmock.NewResult("UPDATE", 5))
	mock.ExpectExec(regexp.QuoteMeta("SET bumped_at = NULL")).
		WithArgs(cutoff).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n, err := repo.ExpireFeatured(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.ExpireAddOns(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = repo.ClearBumps(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRepositoryExpireFeaturedStoreError(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPromotionRepository(mock, logger.NewNop())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE listings")).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("deadlock detected"))

	_, err := repo.ExpireFeatured(context.Background(), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrStore)
}

func TestPromotionRepositorySetFeatured(t *testing.T) {
	listingID := uuid.New()
	until := time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC)

	t.Run("Updated", func(t *testing.T) {
		mock := newMockDB(t)
		repo := NewPromotionRepository(mock, logger.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("SET is_featured = TRUE, featured_until = $2")).
			WithArgs(listingID, until).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.SetFeatured(context.Background(), listingID, until))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingListing", func(t *testing.T) {
		mock := newMockDB(t)
		repo := NewPromotionRepository(mock, logger.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE listings")).
			WithArgs(listingID, until).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetFeatured(context.Background(), listingID, until)
		assert.ErrorIs(t, err, apperrors.ErrListingNotFound)
	})
}

func TestPromotionRepositoryCreateAddOn(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPromotionRepository(mock, logger.NewNop())
	now := time.Now().UTC()
	addOn := &domain.ListingAddOn{
		ID:        uuid.New(),
		ListingID: uuid.New(),
		Product:   domain.ProductUrgent,
		PaymentID: "pay_123",
		Active:    true,
		ExpiresAt: now.Add(domain.DefaultAddOnDuration),
		CreatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listing_add_ons")).
		WithArgs(addOn.ID, addOn.ListingID, "urgent", "pay_123", true, addOn.ExpiresAt, addOn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.CreateAddOn(context.Background(), addOn))
	assert.NoError(t, mock.ExpectationsWereMet())
}
