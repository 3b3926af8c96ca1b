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

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool, at time.Time) error
}

type userRepository struct {
	db  DB
	log logger.Logger
}

func NewUserRepository(db DB, log logger.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, role, plan, is_banned, banned_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Role, &user.Plan, &user.IsBanned, &user.BannedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user by ID", "error", err)
		return nil, apperrors.StoreError("get user", err)
	}
	return user, nil
}

func (r *userRepository) SetBanned(ctx context.Context, id uuid.UUID, banned bool, at time.Time) error {
	query := `
		UPDATE users
		SET is_banned = $2,
		    banned_at = CASE WHEN $2 THEN $3::timestamptz ELSE NULL END,
		    updated_at = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, banned, at)
	if err != nil {
		r.log.Error("Failed to update user ban", "error", err, "user_id", id)
		return apperrors.StoreError("set banned", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
