package domain

import (
	"errors"
	"time"
)

// RateLimitConfig - фиксированное окно: не более MaxRequests запросов за Window
type RateLimitConfig struct {
	Window      time.Duration `json:"window"`
	MaxRequests int           `json:"max_requests"`
}

func (c RateLimitConfig) Validate() error {
	if c.Window <= 0 {
		return errors.New("window must be positive")
	}
	if c.MaxRequests <= 0 {
		return errors.New("max requests must be positive")
	}
	return nil
}

// RateLimitEntry хранится только в памяти процесса (или в Redis), в БД не попадает
type RateLimitEntry struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

// Expired - окно закончилось (граница включительно)
func (e *RateLimitEntry) Expired(now time.Time) bool {
	return !e.ResetAt.After(now)
}

type RateLimitDecision struct {
	Allowed           bool
	Limit             int
	Remaining         int
	ResetAt           time.Time
	RetryAfterSeconds int
}

const (
	RateLimitPresetAPI      = "api"
	RateLimitPresetAuth     = "auth"
	RateLimitPresetListings = "listings"
	RateLimitPresetMessages = "messages"
	RateLimitPresetPayments = "payments"
)

var DefaultRateLimitPresets = map[string]RateLimitConfig{
	RateLimitPresetAPI:      {Window: 15 * time.Minute, MaxRequests: 100},
	RateLimitPresetAuth:     {Window: 15 * time.Minute, MaxRequests: 5},
	RateLimitPresetListings: {Window: time.Hour, MaxRequests: 10},
	RateLimitPresetMessages: {Window: time.Minute, MaxRequests: 20},
	RateLimitPresetPayments: {Window: 15 * time.Minute, MaxRequests: 50},
}
