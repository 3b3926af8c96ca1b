package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AuditAction - закрытый набор привилегированных действий
type AuditAction string

const (
	ActionListingApproved  AuditAction = "LISTING_APPROVED"
	ActionListingRejected  AuditAction = "LISTING_REJECTED"
	ActionListingRemoved   AuditAction = "LISTING_REMOVED"
	ActionListingFeatured  AuditAction = "LISTING_FEATURED"
	ActionListingBumped    AuditAction = "LISTING_BUMPED"
	ActionAddOnActivated   AuditAction = "ADDON_ACTIVATED"
	ActionUserBanned       AuditAction = "USER_BANNED"
	ActionUserUnbanned     AuditAction = "USER_UNBANNED"
	ActionUserRoleChanged  AuditAction = "USER_ROLE_CHANGED"
	ActionUserDeleted      AuditAction = "USER_DELETED"
	ActionPaymentCompleted AuditAction = "PAYMENT_COMPLETED"
	ActionPaymentRefunded  AuditAction = "PAYMENT_REFUNDED"
	ActionSettingsUpdated  AuditAction = "SETTINGS_UPDATED"
	ActionQuotasReset      AuditAction = "QUOTAS_RESET"
	ActionPromotionsSwept  AuditAction = "PROMOTIONS_SWEPT"
)

var actionSeverity = map[AuditAction]Severity{
	ActionUserBanned:       SeverityHigh,
	ActionUserDeleted:      SeverityHigh,
	ActionUserRoleChanged:  SeverityHigh,
	ActionPaymentRefunded:  SeverityHigh,
	ActionListingRemoved:   SeverityHigh,
	ActionSettingsUpdated:  SeverityHigh,
	ActionListingRejected:  SeverityMedium,
	ActionUserUnbanned:     SeverityMedium,
	ActionListingFeatured:  SeverityMedium,
	ActionListingApproved:  SeverityLow,
	ActionListingBumped:    SeverityLow,
	ActionAddOnActivated:   SeverityLow,
	ActionPaymentCompleted: SeverityLow,
	ActionQuotasReset:      SeverityLow,
	ActionPromotionsSwept:  SeverityLow,
}

// Severity для неизвестного действия - medium
func (a AuditAction) Severity() Severity {
	if s, ok := actionSeverity[a]; ok {
		return s
	}
	return SeverityMedium
}

// AllAuditActions - все известные действия в стабильном порядке
func AllAuditActions() []AuditAction {
	actions := make([]AuditAction, 0, len(actionSeverity))
	for action := range actionSeverity {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

func (a AuditAction) Known() bool {
	_, ok := actionSeverity[a]
	return ok
}

const (
	ResourceListing = "listing"
	ResourceUser    = "user"
	ResourcePayment = "payment"
	ResourceSystem  = "system"
)

// AuditLogEntry - неизменяемая запись журнала. Severity не хранится отдельно,
// а выводится из Action.
type AuditLogEntry struct {
	ID           int64                  `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	Action       AuditAction            `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	ActingUserID *uuid.UUID             `json:"acting_user_id,omitempty"`
	Details      map[string]interface{} `json:"details"`
	Severity     Severity               `json:"severity"`
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
}

// LoggedEntry - результат записи; Persisted=false, если хранилище не приняло запись
type LoggedEntry struct {
	AuditLogEntry
	Persisted bool `json:"persisted"`
}

type AuditLogFilter struct {
	Action   AuditAction
	Severity Severity
	Limit    int
	Offset   int
}
