package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"classifieds/internal/domain"
	"classifieds/internal/metrics"
	"classifieds/internal/repository"
	"classifieds/pkg/logger"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

type AuditService interface {
	// Record никогда не возвращает ошибку: сбой записи журнала не должен
	// ломать основное действие
	Record(ctx context.Context, entry domain.AuditLogEntry) domain.LoggedEntry
	List(ctx context.Context, filter domain.AuditLogFilter) ([]*domain.AuditLogEntry, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	clock     clockwork.Clock
	metrics   *metrics.Metrics
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, clock clockwork.Clock, m *metrics.Metrics, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		clock:     clock,
		metrics:   m,
		log:       log,
	}
}

func (s *auditService) Record(ctx context.Context, entry domain.AuditLogEntry) (logged domain.LoggedEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.clock.Now()
	}
	if entry.Details == nil {
		entry.Details = make(map[string]interface{})
	}
	entry.Severity = entry.Action.Severity()
	logged = domain.LoggedEntry{AuditLogEntry: entry}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Audit recorder panicked", "panic", r, "action", entry.Action)
			s.metrics.AuditWriteFailures.Inc()
			logged = domain.LoggedEntry{AuditLogEntry: entry}
		}
	}()

	s.log.Info("[AUDIT]",
		"action", entry.Action,
		"severity", entry.Severity,
		"resource_type", entry.ResourceType,
		"resource_id", entry.ResourceID,
		"actor", entry.ActingUserID,
		"ip", entry.IP,
	)

	if err := s.auditRepo.CreateLog(ctx, &entry); err != nil {
		s.log.Error("Failed to persist audit entry", "error", err, "action", entry.Action)
		s.metrics.AuditWriteFailures.Inc()
		return logged
	}

	s.metrics.AuditEntries.WithLabelValues(string(entry.Severity)).Inc()
	logged.AuditLogEntry = entry
	logged.Persisted = true
	return logged
}

func (s *auditService) List(ctx context.Context, filter domain.AuditLogFilter) ([]*domain.AuditLogEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditPageSize
	}
	if filter.Limit > maxAuditPageSize {
		filter.Limit = maxAuditPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.auditRepo.List(ctx, filter)
}

// newAuditEntry собирает запись от имени актора запроса
func newAuditEntry(actor domain.Actor, action domain.AuditAction, resourceType, resourceID string, details map[string]interface{}) domain.AuditLogEntry {
	entry := domain.AuditLogEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IP:           actor.IP,
		UserAgent:    actor.UserAgent,
	}
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		entry.ActingUserID = &id
	}
	return entry
}

// systemActor - действия планировщика (cron)
func systemActor() domain.Actor {
	return domain.Actor{Role: domain.RoleSystem}
}
