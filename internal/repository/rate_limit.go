package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"classifieds/internal/domain"
	"classifieds/pkg/logger"
)

// RateLimitStore - хранилище окон лимитера. Реализации: в памяти процесса
// (один инстанс) и Redis (общий кэш для нескольких инстансов).
type RateLimitStore interface {
	Get(ctx context.Context, key string) (*domain.RateLimitEntry, bool, error)
	Set(ctx context.Context, key string, entry domain.RateLimitEntry, ttl time.Duration) error
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type memoryRateLimitStore struct {
	mu      sync.RWMutex
	entries map[string]domain.RateLimitEntry
}

func NewMemoryRateLimitStore() RateLimitStore {
	return &memoryRateLimitStore{entries: make(map[string]domain.RateLimitEntry)}
}

func (s *memoryRateLimitStore) Get(_ context.Context, key string) (*domain.RateLimitEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Set игнорирует ttl: просроченные записи удаляет SweepExpired по ResetAt
func (s *memoryRateLimitStore) Set(_ context.Context, key string, entry domain.RateLimitEntry, _ time.Duration) error {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *memoryRateLimitStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

const RateLimitKeyPrefix = "ratelimit:%s"

type redisRateLimitStore struct {
	rdb *redis.Client
	log logger.Logger
}

func NewRedisRateLimitStore(rdb *redis.Client, log logger.Logger) RateLimitStore {
	return &redisRateLimitStore{rdb: rdb, log: log}
}

type redisRateLimitValue struct {
	Count     int   `json:"count"`
	ResetAtMs int64 `json:"reset_at_ms"`
}

func (s *redisRateLimitStore) key(key string) string {
	return fmt.Sprintf(RateLimitKeyPrefix, key)
}

func (s *redisRateLimitStore) Get(ctx context.Context, key string) (*domain.RateLimitEntry, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		s.log.Error("Failed to read rate limit entry", "error", err, "key", key)
		return nil, false, err
	}

	var v redisRateLimitValue
	if err := json.Unmarshal(raw, &v); err != nil {
		// Битая запись - считаем, что окна нет, следующий Set ее перезапишет
		s.log.Warn("Failed to decode rate limit entry", "error", err, "key", key)
		return nil, false, nil
	}

	return &domain.RateLimitEntry{Count: v.Count, ResetAt: time.UnixMilli(v.ResetAtMs)}, true, nil
}

func (s *redisRateLimitStore) Set(ctx context.Context, key string, entry domain.RateLimitEntry, ttl time.Duration) error {
	raw, err := json.Marshal(redisRateLimitValue{Count: entry.Count, ResetAtMs: entry.ResetAt.UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to encode rate limit entry: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	if err := s.rdb.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		s.log.Error("Failed to write rate limit entry", "error", err, "key", key)
		return err
	}
	return nil
}

// SweepExpired в Redis не нужен: ключи истекают по TTL
func (s *redisRateLimitStore) SweepExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
