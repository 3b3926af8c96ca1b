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

type PaymentRepository interface {
	// Claim атомарно помечает оплату использованной. ErrPaymentRequired, если
	// оплаты нет, она чужая, за другой продукт, не завершена или уже использована.
	Claim(ctx context.Context, paymentID string, userID uuid.UUID, product domain.Product, listingID uuid.UUID, at time.Time) error
	// Release возвращает оплату, если привязанное действие не удалось
	Release(ctx context.Context, paymentID string, listingID uuid.UUID) error
}

type paymentRepository struct {
	db  DB
	log logger.Logger
}

func NewPaymentRepository(db DB, log logger.Logger) PaymentRepository {
	return &paymentRepository{db: db, log: log}
}

func (r *paymentRepository) Claim(ctx context.Context, paymentID string, userID uuid.UUID, product domain.Product, listingID uuid.UUID, at time.Time) error {
	query := `
		UPDATE payments
		SET consumed_at = $5, listing_id = $4
		WHERE id = $1
		  AND user_id = $2
		  AND product = $3
		  AND status = 'completed'
		  AND consumed_at IS NULL
		RETURNING id
	`

	var id string
	err := r.db.QueryRow(ctx, query, paymentID, userID, string(product), listingID, at).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrPaymentRequired
		}
		r.log.Error("Failed to claim payment", "error", err, "payment_id", paymentID)
		return apperrors.StoreError("claim payment", err)
	}
	return nil
}

func (r *paymentRepository) Release(ctx context.Context, paymentID string, listingID uuid.UUID) error {
	query := `
		UPDATE payments
		SET consumed_at = NULL, listing_id = NULL
		WHERE id = $1 AND listing_id = $2
	`

	if _, err := r.db.Exec(ctx, query, paymentID, listingID); err != nil {
		r.log.Error("Failed to release payment", "error", err, "payment_id", paymentID)
		return apperrors.StoreError("release payment", err)
	}
	return nil
}
