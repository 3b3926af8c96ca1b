package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextPeriodStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid_month",
			now:  time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
			want: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december_rolls_year",
			now:  time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "first_instant_of_month",
			now:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non_utc_input",
			now:  time.Date(2024, time.January, 31, 23, 0, 0, 0, time.FixedZone("UTC-3", -3*3600)),
			want: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(NextPeriodStart(tt.now)), "got %s", NextPeriodStart(tt.now))
		})
	}
}

func TestEffectiveUsed(t *testing.T) {
	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	t.Run("active_period", func(t *testing.T) {
		state := &QuotaState{FreeListingsUsed: 2, PeriodResetAt: now.Add(time.Hour)}
		assert.Equal(t, 2, EffectiveUsed(state, now))
		assert.Equal(t, state.PeriodResetAt, EffectiveResetAt(state, now))
	})

	t.Run("expired_period_reads_as_zero", func(t *testing.T) {
		state := &QuotaState{FreeListingsUsed: 3, PeriodResetAt: now.Add(-time.Second)}
		assert.Equal(t, 0, EffectiveUsed(state, now))
		assert.Equal(t, NextPeriodStart(now), EffectiveResetAt(state, now))
	})

	t.Run("boundary_is_expired", func(t *testing.T) {
		state := &QuotaState{FreeListingsUsed: 3, PeriodResetAt: now}
		assert.Equal(t, 0, EffectiveUsed(state, now))
	})

	t.Run("nil_state", func(t *testing.T) {
		assert.Equal(t, 0, EffectiveUsed(nil, now))
	})
}
