package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/membership-engine/membership"
	"github.com/warp/membership-engine/report"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func paymentEvent(at time.Time, clientID, amount string, method membership.PaymentMethod, channel string) report.Event {
	return report.Event{
		At:        at,
		ClientID:  clientID,
		Amount:    decimal.RequireFromString(amount),
		HasAmount: true,
		Method:    method,
		Channel:   channel,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// =============================================================================
// TIME SERIES TESTS
// =============================================================================

func TestTimeSeries_MonthBuckets(t *testing.T) {
	// GIVEN: Three payments of 1000 - two in January, one in February
	events := []report.Event{
		paymentEvent(day(2024, time.January, 5), "c-1", "1000.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.January, 20), "c-2", "1000.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.February, 10), "c-1", "1000.00", membership.MethodCash, ""),
	}

	// WHEN: Bucketing by month
	series := report.TimeSeries(events, membership.BucketMonth, time.UTC)

	// THEN: Two buckets, ascending, with per-bucket count and sum
	require.Len(t, series, 2)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), series[0].Start)
	assert.Equal(t, 2, series[0].Count)
	assert.Equal(t, "2000.00", series[0].AmountSum.StringFixed(2))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), series[1].Start)
	assert.Equal(t, 1, series[1].Count)
	assert.Equal(t, "1000.00", series[1].AmountSum.StringFixed(2))
}

func TestTimeSeries_EmptyBucketsOmitted(t *testing.T) {
	// GIVEN: Events in January and March, nothing in February
	events := []report.Event{
		paymentEvent(day(2024, time.January, 5), "c-1", "100.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.March, 5), "c-1", "100.00", membership.MethodCash, ""),
	}

	series := report.TimeSeries(events, membership.BucketMonth, time.UTC)

	// THEN: February does not appear as a zero row
	require.Len(t, series, 2)
	assert.Equal(t, time.January, series[0].Start.Month())
	assert.Equal(t, time.March, series[1].Start.Month())
}

func TestTimeSeries_WeekBuckets_MondayStart(t *testing.T) {
	// GIVEN: 2025-03-10 is a Monday; events Mon, Sun, and next Tue
	events := []report.Event{
		{At: day(2025, time.March, 10), ClientID: "c-1"},
		{At: day(2025, time.March, 16), ClientID: "c-2"},
		{At: day(2025, time.March, 18), ClientID: "c-3"},
	}

	series := report.TimeSeries(events, membership.BucketWeek, time.UTC)

	require.Len(t, series, 2)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), series[0].Start)
	assert.Equal(t, 2, series[0].Count, "Monday through Sunday is one week")
	assert.Equal(t, time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC), series[1].Start)
}

func TestTimeSeries_Empty(t *testing.T) {
	series := report.TimeSeries(nil, membership.BucketDay, time.UTC)
	assert.Empty(t, series)
}

// =============================================================================
// KPI SUMMARY TESTS
// =============================================================================

func TestKPIs(t *testing.T) {
	events := []report.Event{
		paymentEvent(day(2024, time.January, 5), "c-1", "1000.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.January, 20), "c-2", "1000.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.February, 10), "c-1", "1000.00", membership.MethodCash, ""),
	}

	s := report.KPIs(events)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.DistinctClients)
	assert.Equal(t, "3000.00", s.AmountSum.StringFixed(2))
	assert.Equal(t, "1000.00", s.AmountAvg.StringFixed(2))
}

func TestKPIs_AverageRounding(t *testing.T) {
	events := []report.Event{
		paymentEvent(day(2024, time.January, 1), "c-1", "100.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.January, 2), "c-2", "100.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.January, 3), "c-3", "100.01", membership.MethodCash, ""),
	}

	s := report.KPIs(events)
	assert.Equal(t, "100.00", s.AmountAvg.StringFixed(2))
}

func TestKPIs_EmptyStream(t *testing.T) {
	// No events: zero everything, no division fault
	s := report.KPIs(nil)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0, s.DistinctClients)
	assert.True(t, s.AmountSum.IsZero())
	assert.True(t, s.AmountAvg.IsZero())
}

func TestKPIs_ReconcilesWithTimeSeries(t *testing.T) {
	// GIVEN: A mixed stream
	events := []report.Event{
		paymentEvent(day(2024, time.January, 5), "c-1", "1500.50", membership.MethodCash, ""),
		paymentEvent(day(2024, time.February, 1), "c-2", "2000.00", membership.MethodCard, ""),
		paymentEvent(day(2024, time.April, 9), "c-3", "499.50", membership.MethodTransfer, "mercadopago"),
	}

	series := report.TimeSeries(events, membership.BucketMonth, time.UTC)
	summary := report.KPIs(events)

	// THEN: Summing the buckets equals the single-row summary
	count := 0
	sum := decimal.Zero
	for _, b := range series {
		count += b.Count
		sum = sum.Add(b.AmountSum)
	}
	assert.Equal(t, summary.Count, count)
	assert.True(t, summary.AmountSum.Equal(sum))
}

// =============================================================================
// BREAKDOWN TESTS
// =============================================================================

func TestBreakdown_ByMethod(t *testing.T) {
	events := []report.Event{
		paymentEvent(day(2024, time.January, 1), "c-1", "100.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.January, 2), "c-2", "200.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.January, 3), "c-3", "300.00", membership.MethodTransfer, "mercadopago"),
	}

	buckets := report.Breakdown(events, report.DimensionMethod)

	// Categories sorted ascending
	require.Len(t, buckets, 2)
	assert.Equal(t, "cash", buckets[0].Category)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, "300.00", buckets[0].AmountSum.StringFixed(2))
	assert.Equal(t, "transfer", buckets[1].Category)
}

func TestBreakdown_ByChannel_UnknownBucket(t *testing.T) {
	// GIVEN: Cash payments carry no channel
	events := []report.Event{
		paymentEvent(day(2024, time.January, 1), "c-1", "100.00", membership.MethodCash, ""),
		paymentEvent(day(2024, time.January, 2), "c-2", "200.00", membership.MethodTransfer, "mercadopago"),
	}

	buckets := report.Breakdown(events, report.DimensionChannel)

	// THEN: The channel-less payment is reported under "unknown", not dropped
	require.Len(t, buckets, 2)
	assert.Equal(t, "mercadopago", buckets[0].Category)
	assert.Equal(t, report.UnknownCategory, buckets[1].Category)
	assert.Equal(t, 1, buckets[1].Count)
}

func TestParseDimension(t *testing.T) {
	for _, s := range []string{"method", "channel"} {
		d, err := report.ParseDimension(s)
		assert.NoError(t, err)
		assert.Equal(t, report.Dimension(s), d)
	}
	_, err := report.ParseDimension("client")
	assert.True(t, membership.IsValidation(err))
}

// =============================================================================
// FILTER TESTS
// =============================================================================

func TestFilters_Validate(t *testing.T) {
	assert.NoError(t, report.Filters{}.Validate())
	assert.NoError(t, report.Filters{Method: membership.MethodTransfer, Channel: "mercadopago"}.Validate())

	err := report.Filters{Channel: "mercadopago"}.Validate()
	assert.True(t, membership.IsValidation(err), "channel without transfer rejected")

	err = report.Filters{Method: "crypto"}.Validate()
	assert.True(t, membership.IsValidation(err))
}

func TestFilters_Match_ClientSubset(t *testing.T) {
	f := report.Filters{ClientIDs: []string{"c-1", "c-3"}}

	assert.True(t, f.Match(report.Event{ClientID: "c-1"}))
	assert.False(t, f.Match(report.Event{ClientID: "c-2"}))
	assert.True(t, f.Match(report.Event{ClientID: "c-3"}))
}
