package membership

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - One billing cycle: a (month, year) pair
// =============================================================================

// Period identifies one billing cycle for a client. A client has at most
// one Payment per Period; that invariant is enforced at the storage
// boundary, not here.
type Period struct {
	Month int // 1..12
	Year  int // 2020..2100
}

const (
	MinPeriodYear = 2020
	MaxPeriodYear = 2100
)

// Validate checks the period bounds.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return &ValidationError{Field: "period_month", Reason: fmt.Sprintf("must be in [1,12], got %d", p.Month)}
	}
	if p.Year < MinPeriodYear || p.Year > MaxPeriodYear {
		return &ValidationError{Field: "period_year", Reason: fmt.Sprintf("must be in [%d,%d], got %d", MinPeriodYear, MaxPeriodYear, p.Year)}
	}
	return nil
}

// CoversOrAfter reports whether this period is the current period or a
// later one. This is the sole comparison rule behind "up to date": a
// single future-dated payment makes a client current, regardless of
// payment count or amounts.
func (p Period) CoversOrAfter(current Period) bool {
	if p.Year != current.Year {
		return p.Year > current.Year
	}
	return p.Month >= current.Month
}

// Before reports whether this period precedes the other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// CurrentPeriod derives the billing period from the wall clock. The clock
// is injectable so status derivation is testable at period boundaries.
func CurrentPeriod(c Clock) Period {
	now := c.Now()
	return Period{Month: int(now.Month()), Year: now.Year()}
}

// PeriodOf returns the billing period containing the given instant.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}
