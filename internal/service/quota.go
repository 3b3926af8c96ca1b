package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"classifieds/internal/domain"
	"classifieds/internal/metrics"
	"classifieds/internal/repository"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

// QuotaService - месячная квота бесплатных объявлений.
// Сброс на границе периода делается двумя путями: ленивой проверкой при
// чтении (domain.EffectiveUsed) и идемпотентным батчем ResetExpired.
type QuotaService interface {
	CanConsume(ctx context.Context, userID uuid.UUID) (bool, error)
	Consume(ctx context.Context, userID uuid.UUID) (*domain.QuotaSummary, error)
	Release(ctx context.Context, userID uuid.UUID) error
	Summary(ctx context.Context, userID uuid.UUID) (*domain.QuotaSummary, error)
	ResetExpired(ctx context.Context) (*domain.MonthlyResetResult, error)
}

type quotaService struct {
	quotaRepo repository.QuotaRepository
	rules     BusinessRules
	audit     AuditService
	clock     clockwork.Clock
	metrics   *metrics.Metrics
	log       logger.Logger
}

func NewQuotaService(quotaRepo repository.QuotaRepository, rules BusinessRules, audit AuditService, clock clockwork.Clock, m *metrics.Metrics, log logger.Logger) QuotaService {
	return &quotaService{
		quotaRepo: quotaRepo,
		rules:     rules,
		audit:     audit,
		clock:     clock,
		metrics:   m,
		log:       log,
	}
}

func (s *quotaService) CanConsume(ctx context.Context, userID uuid.UUID) (bool, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return false, err
	}
	return summary.CanCreate, nil
}

func (s *quotaService) Summary(ctx context.Context, userID uuid.UUID) (*domain.QuotaSummary, error) {
	state, err := s.quotaRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(state), nil
}

func (s *quotaService) summarize(state *domain.QuotaState) *domain.QuotaSummary {
	now := s.clock.Now()
	limit := s.rules.MaxFreeListings(state.Plan)
	used := domain.EffectiveUsed(state, now)
	return &domain.QuotaSummary{
		Used:      used,
		Max:       limit,
		ResetAt:   domain.EffectiveResetAt(state, now),
		CanCreate: used < limit,
	}
}

// Consume при исчерпанной квоте ничего не меняет и возвращает ThrottledError
func (s *quotaService) Consume(ctx context.Context, userID uuid.UUID) (*domain.QuotaSummary, error) {
	state, err := s.quotaRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := s.summarize(state)
	if !summary.CanCreate {
		s.metrics.QuotaConsumptions.WithLabelValues("denied").Inc()
		return summary, s.exceeded(summary)
	}

	now := s.clock.Now()
	updated, ok, err := s.quotaRepo.Increment(ctx, userID, summary.Max, now, domain.NextPeriodStart(now))
	if err != nil {
		return nil, err
	}
	if !ok {
		// Параллельный запрос успел забрать последний слот
		s.metrics.QuotaConsumptions.WithLabelValues("denied").Inc()
		summary.Used = summary.Max
		summary.CanCreate = false
		return summary, s.exceeded(summary)
	}

	s.metrics.QuotaConsumptions.WithLabelValues("consumed").Inc()
	return s.summarize(updated), nil
}

func (s *quotaService) Release(ctx context.Context, userID uuid.UUID) error {
	if err := s.quotaRepo.Decrement(ctx, userID); err != nil {
		return err
	}
	s.metrics.QuotaConsumptions.WithLabelValues("released").Inc()
	return nil
}

func (s *quotaService) ResetExpired(ctx context.Context) (*domain.MonthlyResetResult, error) {
	now := s.clock.Now()
	next := domain.NextPeriodStart(now)

	count, err := s.quotaRepo.ResetExpired(ctx, now, next)
	if err != nil {
		return nil, err
	}

	s.metrics.QuotaResets.Add(float64(count))
	s.log.Info("Monthly quotas reset", "users", count, "next_reset_at", next)

	if count > 0 {
		s.audit.Record(ctx, newAuditEntry(systemActor(), domain.ActionQuotasReset, domain.ResourceSystem, "",
			map[string]interface{}{"users_reset": count, "next_reset_at": next}))
	}

	return &domain.MonthlyResetResult{UsersReset: count, NextResetAt: next}, nil
}

func (s *quotaService) exceeded(summary *domain.QuotaSummary) error {
	return apperrors.NewThrottledError(apperrors.ErrQuotaExceeded, summary.ResetAt.Sub(s.clock.Now()), summary.ResetAt)
}
