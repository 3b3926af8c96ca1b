package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"classifieds/internal/domain"
	"classifieds/internal/repository"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

// RateLimitService - фиксированное окно на ключ (маршрут + клиент)
type RateLimitService interface {
	Check(ctx context.Context, key string, cfg domain.RateLimitConfig) (domain.RateLimitDecision, error)
}

type rateLimitService struct {
	store         repository.RateLimitStore
	clock         clockwork.Clock
	sweepInterval time.Duration
	log           logger.Logger

	// mu сериализует read-modify-write счетчика и очистку
	mu        sync.Mutex
	lastSweep time.Time
}

func NewRateLimitService(store repository.RateLimitStore, clock clockwork.Clock, sweepInterval time.Duration, log logger.Logger) RateLimitService {
	return &rateLimitService{
		store:         store,
		clock:         clock,
		sweepInterval: sweepInterval,
		log:           log,
	}
}

func (s *rateLimitService) Check(ctx context.Context, key string, cfg domain.RateLimitConfig) (domain.RateLimitDecision, error) {
	if err := cfg.Validate(); err != nil {
		return domain.RateLimitDecision{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweep(ctx, now)

	entry, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return domain.RateLimitDecision{}, apperrors.StoreError("rate limit get", err)
	}

	// Новое окно
	if !ok || entry.Expired(now) {
		fresh := domain.RateLimitEntry{Count: 1, ResetAt: now.Add(cfg.Window)}
		if err := s.store.Set(ctx, key, fresh, cfg.Window); err != nil {
			return domain.RateLimitDecision{}, apperrors.StoreError("rate limit set", err)
		}
		return domain.RateLimitDecision{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests - 1,
			ResetAt:   fresh.ResetAt,
		}, nil
	}

	if entry.Count < cfg.MaxRequests {
		entry.Count++
		if err := s.store.Set(ctx, key, *entry, entry.ResetAt.Sub(now)); err != nil {
			return domain.RateLimitDecision{}, apperrors.StoreError("rate limit set", err)
		}
		return domain.RateLimitDecision{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests - entry.Count,
			ResetAt:   entry.ResetAt,
		}, nil
	}

	return domain.RateLimitDecision{
		Allowed:           false,
		Limit:             cfg.MaxRequests,
		Remaining:         0,
		ResetAt:           entry.ResetAt,
		RetryAfterSeconds: retryAfterSeconds(entry.ResetAt.Sub(now)),
	}, nil
}

// sweep удаляет просроченные окна. Полный проход на каждую проверку - O(n);
// sweepInterval позволяет проходить реже.
func (s *rateLimitService) sweep(ctx context.Context, now time.Time) {
	if s.sweepInterval > 0 && now.Sub(s.lastSweep) < s.sweepInterval {
		return
	}
	removed, err := s.store.SweepExpired(ctx, now)
	if err != nil {
		s.log.Warn("Failed to sweep expired rate limit entries", "error", err)
		return
	}
	s.lastSweep = now
	if removed > 0 {
		s.log.Debug("Expired rate limit entries removed", "count", removed)
	}
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
