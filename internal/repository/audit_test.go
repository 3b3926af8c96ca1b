package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classifieds/internal/domain"
	"classifieds/pkg/logger"
)

func TestAuditRepositoryCreateLog(t *testing.T) {
	mock := newMockDB(t)
	repo := NewAuditRepository(mock, logger.NewNop())
	actor := uuid.New()
	entry := &domain.AuditLogEntry{
		Timestamp:    time.Now().UTC(),
		Action:       domain.ActionUserBanned,
		ResourceType: domain.ResourceUser,
		ResourceID:   uuid.NewString(),
		ActingUserID: &actor,
		Details:      map[string]interface{}{"reason": "spam"},
		IP:           "203.0.113.9",
		UserAgent:    "curl/8.0",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs(entry.Timestamp, "USER_BANNED", "user", entry.ResourceID, entry.ActingUserID, entry.Details, "203.0.113.9", "curl/8.0").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(17)))

	require.NoError(t, repo.CreateLog(context.Background(), entry))
	assert.Equal(t, int64(17), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryList(t *testing.T) {
	mock := newMockDB(t)
	repo := NewAuditRepository(mock, logger.NewNop())
	actor := uuid.New()
	created := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	columns := []string{"id", "created_at", "action", "resource_type", "resource_id", "acting_user_id", "details", "ip", "user_agent"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE action = ANY($1) ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3")).
		WithArgs(actionsWithSeverity(domain.SeverityHigh), 10, 0).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(2), created, "USER_BANNED", "user", "u-1", &actor, []byte(`{"reason":"spam"}`), "203.0.113.9", "curl/8.0").
			AddRow(int64(1), created, "LISTING_REMOVED", "listing", "l-1", (*uuid.UUID)(nil), []byte(nil), "", ""))

	entries, err := repo.List(context.Background(), domain.AuditLogFilter{Severity: domain.SeverityHigh, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, domain.ActionUserBanned, entries[0].Action)
	assert.Equal(t, domain.SeverityHigh, entries[0].Severity)
	assert.Equal(t, "spam", entries[0].Details["reason"])
	require.NotNil(t, entries[0].ActingUserID)
	assert.Equal(t, actor, *entries[0].ActingUserID)
	assert.Nil(t, entries[1].ActingUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActionsWithSeverity(t *testing.T) {
	high := actionsWithSeverity(domain.SeverityHigh)
	assert.Contains(t, high, string(domain.ActionUserBanned))
	assert.NotContains(t, high, string(domain.ActionListingApproved))
}
