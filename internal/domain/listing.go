package domain

import (
	"time"

	"github.com/google/uuid"
)

type Listing struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	IsFree      bool      `json:"is_free"`
	PromotionalState
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PromotionalState - поля продвижения. Пишет их только завершение платежа,
// сбрасывает только sweeper.
type PromotionalState struct {
	IsFeatured       bool       `json:"is_featured"`
	FeaturedUntil    *time.Time `json:"featured_until,omitempty"`
	FeaturedPosition *int       `json:"featured_position,omitempty"`
	BumpedAt         *time.Time `json:"bumped_at,omitempty"`
}

type ListingAddOn struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	Product   Product   `json:"product"`
	PaymentID string    `json:"payment_id"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ListingStatusPending  = "pending"
	ListingStatusActive   = "active"
	ListingStatusRejected = "rejected"
	ListingStatusRemoved  = "removed"
)

// Product - платная опция продвижения
type Product string

const (
	ProductFeatured  Product = "featured"
	ProductBump      Product = "bump"
	ProductUrgent    Product = "urgent"
	ProductHighlight Product = "highlight"
	ProductExtraSlot Product = "extra_slot"
)

func (p Product) Valid() bool {
	switch p {
	case ProductFeatured, ProductBump, ProductUrgent, ProductHighlight, ProductExtraSlot:
		return true
	}
	return false
}

// IsAddOn - продукты, которые хранятся отдельной записью в listing_add_ons
func (p Product) IsAddOn() bool {
	return p == ProductUrgent || p == ProductHighlight || p == ProductExtraSlot
}

const (
	DefaultFeaturedDuration = 7 * 24 * time.Hour
	DefaultAddOnDuration    = 7 * 24 * time.Hour
	DefaultBumpTTL          = 7 * 24 * time.Hour
)

type SweepResult struct {
	ExpiredFeatured int64 `json:"expiredFeatured"`
	ExpiredAddOns   int64 `json:"expiredAddOns"`
	ClearedBumps    int64 `json:"clearedBumps"`
}

type ModerationDecision string

const (
	DecisionApprove ModerationDecision = "approve"
	DecisionReject  ModerationDecision = "reject"
	DecisionRemove  ModerationDecision = "remove"
)

func (d ModerationDecision) Status() (string, bool) {
	switch d {
	case DecisionApprove:
		return ListingStatusActive, true
	case DecisionReject:
		return ListingStatusRejected, true
	case DecisionRemove:
		return ListingStatusRemoved, true
	}
	return "", false
}
