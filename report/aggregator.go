package report

import (
	"context"
	"time"

	"github.com/warp/membership-engine/membership"
)

// =============================================================================
// AGGREGATOR - Wires sources, timezone, and the three shapes together
// =============================================================================

// Aggregator serves the report endpoints. Reads are point-in-time
// snapshots; they run outside the ledger's write path and tolerate a
// weaker isolation level than payment creation.
type Aggregator struct {
	Payments   PaymentSource
	Attendance AttendanceSource
	Signups    SignupSource
	Loc        *time.Location
}

func NewAggregator(p PaymentSource, a AttendanceSource, s SignupSource, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{Payments: p, Attendance: a, Signups: s, Loc: loc}
}

func (a *Aggregator) paymentStream(ctx context.Context, r membership.DateRange, f Filters) ([]Event, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return a.Payments.PaymentEvents(ctx, r, f)
}

// Revenue returns the bucketed payment series for the range.
func (a *Aggregator) Revenue(ctx context.Context, r membership.DateRange, b membership.Bucket, f Filters) ([]TimeBucket, error) {
	events, err := a.paymentStream(ctx, r, f)
	if err != nil {
		return nil, err
	}
	return TimeSeries(events, b, a.Loc), nil
}

// RevenueKPIs returns the single-row summary over the same stream the
// time series aggregates, so totals always reconcile.
func (a *Aggregator) RevenueKPIs(ctx context.Context, r membership.DateRange, f Filters) (Summary, error) {
	events, err := a.paymentStream(ctx, r, f)
	if err != nil {
		return Summary{}, err
	}
	return KPIs(events), nil
}

// RevenueBreakdown groups the payment stream by method or channel.
func (a *Aggregator) RevenueBreakdown(ctx context.Context, r membership.DateRange, dim Dimension, f Filters) ([]CategoryBucket, error) {
	events, err := a.paymentStream(ctx, r, f)
	if err != nil {
		return nil, err
	}
	return Breakdown(events, dim), nil
}

// AttendanceSeries returns bucketed check-in counts for the range.
func (a *Aggregator) AttendanceSeries(ctx context.Context, r membership.DateRange, b membership.Bucket) ([]TimeBucket, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	events, err := a.Attendance.AttendanceEvents(ctx, r)
	if err != nil {
		return nil, err
	}
	return TimeSeries(events, b, a.Loc), nil
}

// NewClientsSeries returns bucketed signup counts for the range.
func (a *Aggregator) NewClientsSeries(ctx context.Context, r membership.DateRange, b membership.Bucket) ([]TimeBucket, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	events, err := a.Signups.SignupEvents(ctx, r)
	if err != nil {
		return nil, err
	}
	return TimeSeries(events, b, a.Loc), nil
}
