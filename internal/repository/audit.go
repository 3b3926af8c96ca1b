package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"classifieds/internal/domain"
	apperrors "classifieds/pkg/errors"
	"classifieds/pkg/logger"
)

// AuditRepository - только добавление и чтение, записи журнала не изменяются
type AuditRepository interface {
	CreateLog(ctx context.Context, entry *domain.AuditLogEntry) error
	List(ctx context.Context, filter domain.AuditLogFilter) ([]*domain.AuditLogEntry, error)
}

type auditRepository struct {
	db  DB
	log logger.Logger
}

func NewAuditRepository(db DB, log logger.Logger) AuditRepository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) CreateLog(ctx context.Context, entry *domain.AuditLogEntry) error {
	query := `
		INSERT INTO audit_logs (created_at, action, resource_type, resource_id, acting_user_id, details, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		entry.Timestamp, string(entry.Action), entry.ResourceType, entry.ResourceID,
		entry.ActingUserID, entry.Details, entry.IP, entry.UserAgent,
	).Scan(&entry.ID)

	if err != nil {
		r.log.Error("Failed to create audit log", "error", err, "action", entry.Action)
		return apperrors.StoreError("create audit log", err)
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, filter domain.AuditLogFilter) ([]*domain.AuditLogEntry, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.Severity != "" {
		// severity в таблице не хранится - фильтруем по набору действий
		actions := actionsWithSeverity(filter.Severity)
		args = append(args, actions)
		conds = append(conds, fmt.Sprintf("action = ANY($%d)", len(args)))
	}

	query := `
		SELECT id, created_at, action, resource_type, resource_id, acting_user_id, details, ip, user_agent
		FROM audit_logs
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list audit logs", "error", err)
		return nil, apperrors.StoreError("list audit logs", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLogEntry
	for rows.Next() {
		var (
			e       domain.AuditLogEntry
			action  string
			actor   *uuid.UUID
			details []byte
		)
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &action, &e.ResourceType, &e.ResourceID,
			&actor, &details, &e.IP, &e.UserAgent,
		); err != nil {
			r.log.Error("Failed to scan audit log", "error", err)
			return nil, apperrors.StoreError("scan audit log", err)
		}

		e.Action = domain.AuditAction(action)
		e.Severity = e.Action.Severity()
		e.ActingUserID = actor
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				r.log.Warn("Failed to decode audit details", "error", err, "id", e.ID)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreError("list audit logs", err)
	}

	return entries, nil
}

func actionsWithSeverity(severity domain.Severity) []string {
	var actions []string
	for _, action := range domain.AllAuditActions() {
		if action.Severity() == severity {
			actions = append(actions, string(action))
		}
	}
	return actions
}
