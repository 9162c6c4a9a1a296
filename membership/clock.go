/*
clock.go - Time sources and temporal range/bucket arithmetic

PURPOSE:
  Everything temporal that the engine depends on lives here: the
  injectable clock, the inclusive-end-to-exclusive-bound conversion used
  by every range filter, and bucket truncation for reports.

RANGE CONVENTION:
  Callers specify inclusive end dates ("through February 29"). Internally
  every filter is half-open: [start, exclusiveUpperBound). Converting at
  the edge of the system means a payment stamped exactly 23:59:59 on the
  end date is included exactly once, and no comparison in the engine ever
  needs >= AND <=.

BUCKET CONVENTION:
  Bucket boundaries are evaluated in the configured reporting timezone,
  not in storage (UTC) time, so a 23:00 UTC check-in lands in the
  calendar day the gym staff experienced. Weeks start on Monday.

SEE ALSO:
  - report/: Groups events by BucketStart
  - period.go: Billing-period (month/year) arithmetic
*/
package membership

import "time"

// =============================================================================
// CLOCK - Injectable time source
// =============================================================================

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location. The location
// matters: the current billing period flips at local midnight on the
// first of the month, not at UTC midnight.
type SystemClock struct {
	Loc *time.Location
}

func (c SystemClock) Now() time.Time {
	loc := c.Loc
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// FixedClock always returns the same instant. For tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// =============================================================================
// INCLUSIVE RANGES
// =============================================================================

// DateRange is a caller-specified inclusive date range, already converted
// to the half-open form every store query uses.
type DateRange struct {
	From        time.Time
	ToExclusive time.Time
}

// Contains reports whether t falls within [From, ToExclusive).
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.ToExclusive)
}

// Validate rejects empty and inverted ranges.
func (r DateRange) Validate() error {
	if r.From.IsZero() || r.ToExclusive.IsZero() {
		return &ValidationError{Field: "range", Reason: "start and end are required"}
	}
	if !r.From.Before(r.ToExclusive) {
		return &ValidationError{Field: "range", Reason: "end must not precede start"}
	}
	return nil
}

// InclusiveEndDate converts an inclusive calendar end date to its
// exclusive upper bound: midnight of the following day in d's location.
func InclusiveEndDate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location()).AddDate(0, 0, 1)
}

// InclusiveEndTime converts an inclusive end timestamp to its exclusive
// upper bound: the timestamp plus one second.
func InclusiveEndTime(t time.Time) time.Time {
	return t.Add(time.Second)
}

// NewDateRange builds the half-open range [start of startDate,
// midnight after endDate) with both bounds evaluated in loc.
func NewDateRange(start, end time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	r := DateRange{
		From:        time.Date(sy, sm, sd, 0, 0, 0, 0, loc),
		ToExclusive: InclusiveEndDate(time.Date(ey, em, ed, 0, 0, 0, 0, loc)),
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDateRange parses caller-supplied YYYY-MM-DD bounds into a range.
// A malformed or inverted range is a validation error.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := time.ParseInLocation("2006-01-02", start, loc)
	if err != nil {
		return DateRange{}, &ValidationError{Field: "start", Reason: "must be a YYYY-MM-DD date"}
	}
	e, err := time.ParseInLocation("2006-01-02", end, loc)
	if err != nil {
		return DateRange{}, &ValidationError{Field: "end", Reason: "must be a YYYY-MM-DD date"}
	}
	return NewDateRange(s, e, loc)
}

// =============================================================================
// BUCKETS - Fixed-granularity intervals for report grouping
// =============================================================================

type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// ParseBucket validates a bucket granularity string.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case BucketDay, BucketWeek, BucketMonth:
		return Bucket(s), nil
	}
	return "", &ValidationError{Field: "bucket", Reason: "must be one of day, week, month: " + s}
}

// BucketStart truncates t to the start of its containing day, week, or
// month, evaluated in loc. Weeks start on Monday.
func BucketStart(t time.Time, b Bucket, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, d := local.Date()

	switch b {
	case BucketWeek:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		// Monday = 0 offset; Go's Sunday = 0 needs remapping.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case BucketMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}
