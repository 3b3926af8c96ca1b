package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree     = "free"
	PlanBasic    = "basic"
	PlanBusiness = "business"
)

var DefaultFreeListingsPerPlan = map[string]int{
	PlanFree:     3,
	PlanBasic:    10,
	PlanBusiness: 50,
}

type QuotaState struct {
	UserID           uuid.UUID `json:"user_id"`
	Plan             string    `json:"plan"`
	FreeListingsUsed int       `json:"free_listings_used"`
	PeriodResetAt    time.Time `json:"period_reset_at"`
}

type QuotaSummary struct {
	Used      int       `json:"used"`
	Max       int       `json:"max"`
	ResetAt   time.Time `json:"reset_at"`
	CanCreate bool      `json:"can_create"`
}

type MonthlyResetResult struct {
	UsersReset  int64     `json:"usersReset"`
	NextResetAt time.Time `json:"nextResetAt"`
}

// EffectiveUsed - сколько бесплатных объявлений израсходовано на момент now.
// Если граница периода уже прошла, а батч-сброс еще не отработал, считаем 0.
func EffectiveUsed(state *QuotaState, now time.Time) int {
	if state == nil || !state.PeriodResetAt.After(now) {
		return 0
	}
	return state.FreeListingsUsed
}

// EffectiveResetAt - граница текущего периода с учетом ленивого сброса
func EffectiveResetAt(state *QuotaState, now time.Time) time.Time {
	if state == nil || !state.PeriodResetAt.After(now) {
		return NextPeriodStart(now)
	}
	return state.PeriodResetAt
}

// NextPeriodStart - первое мгновение следующего календарного месяца (UTC)
func NextPeriodStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
