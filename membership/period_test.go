package membership_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/membership-engine/membership"
)

// =============================================================================
// PERIOD VALIDATION TESTS
// =============================================================================

func TestPeriod_Validate_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		period membership.Period
		ok     bool
	}{
		{"valid mid-range", membership.Period{Month: 6, Year: 2025}, true},
		{"month lower bound", membership.Period{Month: 1, Year: 2025}, true},
		{"month upper bound", membership.Period{Month: 12, Year: 2025}, true},
		{"month zero", membership.Period{Month: 0, Year: 2025}, false},
		{"month thirteen", membership.Period{Month: 13, Year: 2025}, false},
		{"year lower bound", membership.Period{Month: 1, Year: 2020}, true},
		{"year upper bound", membership.Period{Month: 1, Year: 2100}, true},
		{"year below range", membership.Period{Month: 1, Year: 2019}, false},
		{"year above range", membership.Period{Month: 1, Year: 2101}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.period.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.True(t, membership.IsValidation(err), "should be a validation error")
			}
		})
	}
}

// =============================================================================
// PERIOD COMPARISON TESTS
// =============================================================================

func TestPeriod_CoversOrAfter(t *testing.T) {
	current := membership.Period{Month: 3, Year: 2025}

	tests := []struct {
		name   string
		latest membership.Period
		want   bool
	}{
		{"same period", membership.Period{Month: 3, Year: 2025}, true},
		{"next month", membership.Period{Month: 4, Year: 2025}, true},
		{"far future year", membership.Period{Month: 1, Year: 2027}, true},
		{"previous month", membership.Period{Month: 2, Year: 2025}, false},
		{"december of previous year", membership.Period{Month: 12, Year: 2024}, false},
		{"january of next year", membership.Period{Month: 1, Year: 2026}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.latest.CoversOrAfter(current))
		})
	}
}

func TestPeriod_Before_YearBoundary(t *testing.T) {
	// GIVEN: December 2024 and January 2025
	dec := membership.Period{Month: 12, Year: 2024}
	jan := membership.Period{Month: 1, Year: 2025}

	// THEN: Year dominates month
	assert.True(t, dec.Before(jan))
	assert.False(t, jan.Before(dec))
	assert.False(t, jan.Before(jan))
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "2025-03", membership.Period{Month: 3, Year: 2025}.String())
	assert.Equal(t, "2024-12", membership.Period{Month: 12, Year: 2024}.String())
}

// =============================================================================
// CURRENT PERIOD DERIVATION
// =============================================================================

func TestCurrentPeriod_FromClock(t *testing.T) {
	// GIVEN: A clock fixed at the last second of March 2025
	clock := membership.FixedClock{T: time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)}

	// WHEN: Deriving the current billing period
	got := membership.CurrentPeriod(clock)

	// THEN: Still March; the flip happens at the next instant
	assert.Equal(t, membership.Period{Month: 3, Year: 2025}, got)
}

func TestPeriodOf(t *testing.T) {
	at := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, membership.Period{Month: 12, Year: 2024}, membership.PeriodOf(at))
}
