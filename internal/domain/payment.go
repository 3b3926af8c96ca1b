package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment - подтвержденная оплата продукта. Каждую оплату можно использовать
// ровно один раз: при использовании проставляются consumed_at и listing_id.
type Payment struct {
	ID         string     `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Product    Product    `json:"product"`
	Status     string     `json:"status"`
	ListingID  *uuid.UUID `json:"listing_id,omitempty"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"
)
