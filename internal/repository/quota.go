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

type QuotaRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.QuotaState, error)
	// Increment атомарно увеличивает счетчик, если он меньше limit (с ленивым сбросом периода).
	// Возвращает ok=false, если лимит исчерпан.
	Increment(ctx context.Context, userID uuid.UUID, limit int, now, nextReset time.Time) (*domain.QuotaState, bool, error)
	Decrement(ctx context.Context, userID uuid.UUID) error
	ResetExpired(ctx context.Context, now, nextReset time.Time) (int64, error)
}

type quotaRepository struct {
	db  DB
	log logger.Logger
}

func NewQuotaRepository(db DB, log logger.Logger) QuotaRepository {
	return &quotaRepository{db: db, log: log}
}

func (r *quotaRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.QuotaState, error) {
	query := `
		SELECT id, plan, free_listings_used, quota_reset_at
		FROM users
		WHERE id = $1
	`

	state := &domain.QuotaState{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&state.UserID, &state.Plan, &state.FreeListingsUsed, &state.PeriodResetAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get quota state", "error", err, "user_id", userID)
		return nil, apperrors.StoreError("get quota", err)
	}

	return state, nil
}

func (r *quotaRepository) Increment(ctx context.Context, userID uuid.UUID, limit int, now, nextReset time.Time) (*domain.QuotaState, bool, error) {
	// Одно выражение: если период истек - начинаем новый с 1, иначе +1, но только пока used < max
	query := `
		UPDATE users
		SET free_listings_used = CASE WHEN quota_reset_at <= $2 THEN 1 ELSE free_listings_used + 1 END,
		    quota_reset_at     = CASE WHEN quota_reset_at <= $2 THEN $3 ELSE quota_reset_at END,
		    updated_at         = $2
		WHERE id = $1
		  AND (quota_reset_at <= $2 OR free_listings_used < $4)
		RETURNING id, plan, free_listings_used, quota_reset_at
	`

	state := &domain.QuotaState{}
	err := r.db.QueryRow(ctx, query, userID, now, nextReset, limit).Scan(
		&state.UserID, &state.Plan, &state.FreeListingsUsed, &state.PeriodResetAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		r.log.Error("Failed to increment quota", "error", err, "user_id", userID)
		return nil, false, apperrors.StoreError("increment quota", err)
	}

	return state, true, nil
}

func (r *quotaRepository) Decrement(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET free_listings_used = GREATEST(free_listings_used - 1, 0)
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		r.log.Error("Failed to decrement quota", "error", err, "user_id", userID)
		return apperrors.StoreError("decrement quota", err)
	}
	return nil
}

// ResetExpired трогает только пользователей с истекшим периодом, поэтому
// повторный запуск ничего не меняет
func (r *quotaRepository) ResetExpired(ctx context.Context, now, nextReset time.Time) (int64, error) {
	query := `
		UPDATE users
		SET free_listings_used = 0, quota_reset_at = $2, updated_at = $1
		WHERE quota_reset_at <= $1
	`

	tag, err := r.db.Exec(ctx, query, now, nextReset)
	if err != nil {
		r.log.Error("Failed to reset monthly quotas", "error", err)
		return 0, apperrors.StoreError("reset quotas", err)
	}
	return tag.RowsAffected(), nil
}
