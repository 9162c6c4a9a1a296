/*
Package report computes time-bucketed and summary reports over the
billing engine's event streams.

PURPOSE:
  Answers "what happened in this time range?" for revenue, attendance,
  and new signups. Three shapes share one skeleton and differ only in
  the source stream and the aggregated measure:

    Time series : group by bucket start, ascending; buckets with zero
                  matching events are OMITTED, not emitted as zeros.
                  Gap-filling is the caller's responsibility.
    KPI summary : one row - count, distinct clients, sum, average.
    Breakdown   : group by a categorical dimension (method or channel);
                  an absent category is reported under "unknown".

CONSISTENCY:
  For the same range and filters, summing the time-series measures must
  equal the KPI summary. Both shapes run over the identical filtered
  stream, so the invariant holds by construction; the tests assert it
  anyway.

TIME:
  All range filtering is half-open [start, exclusiveUpperBound) and all
  bucket boundaries are evaluated in one configured reporting timezone
  with Monday week starts (membership.BucketStart).

SEE ALSO:
  - membership/clock.go: Range and bucket arithmetic
  - store/sqlite: Event stream implementations
*/
package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/membership-engine/membership"
)

// =============================================================================
// EVENTS - The one record shape all three report forms consume
// =============================================================================

// Event is a single occurrence in a source stream: a payment, a
// check-in, or a signup. Amount-less streams leave HasAmount false.
type Event struct {
	At        time.Time
	ClientID  string
	Amount    decimal.Decimal
	HasAmount bool
	Method    membership.PaymentMethod
	Channel   string
}

// Sources supply pre-range-filtered event streams. Implementations apply
// the dimension filters too, so every shape aggregates the same stream.
type PaymentSource interface {
	PaymentEvents(ctx context.Context, r membership.DateRange, f Filters) ([]Event, error)
}

type AttendanceSource interface {
	AttendanceEvents(ctx context.Context, r membership.DateRange) ([]Event, error)
}

type SignupSource interface {
	SignupEvents(ctx context.Context, r membership.DateRange) ([]Event, error)
}

// =============================================================================
// FILTERS
// =============================================================================

// Filters narrows a payment stream by dimensions. Zero values mean no
// filter. ClientIDs non-empty restricts to that client subset.
type Filters struct {
	Method    membership.PaymentMethod
	Channel   string
	ClientIDs []string
}

// Validate enforces the channel/method coherence rule: a channel filter
// without method=transfer is an error, not an ignored filter.
func (f Filters) Validate() error {
	if f.Method != "" {
		if _, err := membership.ParseMethod(string(f.Method)); err != nil {
			return err
		}
	}
	if f.Channel != "" && f.Method != membership.MethodTransfer {
		return &membership.ValidationError{Field: "channel", Reason: "channel filter requires method=transfer"}
	}
	return nil
}

// Match applies the filter in memory; the sqlite source expresses the
// same predicate as SQL.
func (f Filters) Match(e Event) bool {
	if f.Method != "" && e.Method != f.Method {
		return false
	}
	if f.Channel != "" && e.Channel != f.Channel {
		return false
	}
	if len(f.ClientIDs) > 0 {
		found := false
		for _, id := range f.ClientIDs {
			if e.ClientID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// =============================================================================
// SHAPE 1: TIME SERIES
// =============================================================================

// TimeBucket is one row of a time series: all events whose bucket start
// coincides, with count and (for amount-carrying streams) the sum.
type TimeBucket struct {
	Start     time.Time
	Count     int
	AmountSum decimal.Decimal
}

// TimeSeries groups events by bucket start in loc, ascending. Buckets
// with no events do not appear.
func TimeSeries(events []Event, b membership.Bucket, loc *time.Location) []TimeBucket {
	groups := make(map[time.Time]*TimeBucket)
	for _, e := range events {
		start := membership.BucketStart(e.At, b, loc)
		g, ok := groups[start]
		if !ok {
			g = &TimeBucket{Start: start, AmountSum: decimal.Zero}
			groups[start] = g
		}
		g.Count++
		if e.HasAmount {
			g.AmountSum = g.AmountSum.Add(e.Amount)
		}
	}

	out := make([]TimeBucket, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// =============================================================================
// SHAPE 2: KPI SUMMARY
// =============================================================================

// Summary collapses a stream to a single row.
type Summary struct {
	Count           int
	DistinctClients int
	AmountSum       decimal.Decimal
	AmountAvg       decimal.Decimal
}

// KPIs computes the summary. Average is zero when the stream is empty;
// there is never a division fault.
func KPIs(events []Event) Summary {
	s := Summary{AmountSum: decimal.Zero, AmountAvg: decimal.Zero}
	clients := make(map[string]bool)
	for _, e := range events {
		s.Count++
		clients[e.ClientID] = true
		if e.HasAmount {
			s.AmountSum = s.AmountSum.Add(e.Amount)
		}
	}
	s.DistinctClients = len(clients)
	if s.Count > 0 {
		s.AmountAvg = s.AmountSum.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	return s
}

// =============================================================================
// SHAPE 3: CATEGORICAL BREAKDOWN
// =============================================================================

type Dimension string

const (
	DimensionMethod  Dimension = "method"
	DimensionChannel Dimension = "channel"
)

// UnknownCategory labels events whose dimension value is absent. They
// are reported, not dropped.
const UnknownCategory = "unknown"

// ParseDimension validates a breakdown dimension string.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionMethod, DimensionChannel:
		return Dimension(s), nil
	}
	return "", &membership.ValidationError{Field: "dimension", Reason: "must be method or channel: " + s}
}

// CategoryBucket is one row of a breakdown.
type CategoryBucket struct {
	Category  string
	Count     int
	AmountSum decimal.Decimal
}

// Breakdown groups events by the given dimension, category ascending.
func Breakdown(events []Event, dim Dimension) []CategoryBucket {
	groups := make(map[string]*CategoryBucket)
	for _, e := range events {
		var cat string
		switch dim {
		case DimensionChannel:
			cat = e.Channel
		default:
			cat = string(e.Method)
		}
		if cat == "" {
			cat = UnknownCategory
		}
		g, ok := groups[cat]
		if !ok {
			g = &CategoryBucket{Category: cat, AmountSum: decimal.Zero}
			groups[cat] = g
		}
		g.Count++
		if e.HasAmount {
			g.AmountSum = g.AmountSum.Add(e.Amount)
		}
	}

	out := make([]CategoryBucket, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
