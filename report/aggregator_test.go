package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/membership-engine/membership"
	"github.com/warp/membership-engine/membership/store"
	"github.com/warp/membership-engine/report"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newAggregatorFixture seeds two clients with the canonical three-payment
// revenue scenario: 1000 on Jan 5 and Jan 20, 1000 on Feb 10.
func newAggregatorFixture(t *testing.T) (*report.Aggregator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()

	ctx := context.Background()
	mem.Clock = membership.FixedClock{T: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)}
	c1, err := mem.CreateClient(ctx, membership.CreateClientInput{FullName: "Ana García"})
	require.NoError(t, err)
	c2, err := mem.CreateClient(ctx, membership.CreateClientInput{FullName: "Bruno Díaz"})
	require.NoError(t, err)

	seed := func(clientID string, at time.Time, month int, method membership.PaymentMethod, channel string) {
		mem.Clock = membership.FixedClock{T: at}
		_, err := mem.CreatePayment(ctx, membership.CreatePaymentInput{
			ClientID:      clientID,
			Amount:        decimal.RequireFromString("1000.00"),
			Method:        method,
			MethodChannel: channel,
			Period:        membership.Period{Month: month, Year: 2024},
		})
		require.NoError(t, err)
	}

	seed(c1.ID, time.Date(2024, time.January, 5, 14, 0, 0, 0, time.UTC), 1, membership.MethodCash, "")
	seed(c2.ID, time.Date(2024, time.January, 20, 14, 0, 0, 0, time.UTC), 1, membership.MethodTransfer, "mercadopago")
	seed(c1.ID, time.Date(2024, time.February, 10, 14, 0, 0, 0, time.UTC), 2, membership.MethodCash, "")

	return report.NewAggregator(mem, mem, mem, time.UTC), mem
}

// =============================================================================
// REVENUE REPORT TESTS
// =============================================================================

func TestAggregator_Revenue_MonthSeries(t *testing.T) {
	agg, _ := newAggregatorFixture(t)

	r, err := membership.ParseDateRange("2024-01-01", "2024-03-31", time.UTC)
	require.NoError(t, err)

	series, err := agg.Revenue(context.Background(), r, membership.BucketMonth, report.Filters{})
	require.NoError(t, err)

	require.Len(t, series, 2, "march is empty and omitted")
	assert.Equal(t, 2, series[0].Count)
	assert.Equal(t, "2000.00", series[0].AmountSum.StringFixed(2))
	assert.Equal(t, 1, series[1].Count)
	assert.Equal(t, "1000.00", series[1].AmountSum.StringFixed(2))
}

func TestAggregator_RevenueKPIs(t *testing.T) {
	agg, _ := newAggregatorFixture(t)

	r, err := membership.ParseDateRange("2024-01-01", "2024-03-31", time.UTC)
	require.NoError(t, err)

	s, err := agg.RevenueKPIs(context.Background(), r, report.Filters{})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.DistinctClients)
	assert.Equal(t, "3000.00", s.AmountSum.StringFixed(2))
	assert.Equal(t, "1000.00", s.AmountAvg.StringFixed(2))
}

func TestAggregator_SeriesAndKPIs_SameStream(t *testing.T) {
	// Same range, same filters: the series must sum to the KPI row
	agg, _ := newAggregatorFixture(t)
	ctx := context.Background()

	r, err := membership.ParseDateRange("2024-01-01", "2024-12-31", time.UTC)
	require.NoError(t, err)
	f := report.Filters{Method: membership.MethodCash}

	series, err := agg.Revenue(ctx, r, membership.BucketMonth, f)
	require.NoError(t, err)
	kpis, err := agg.RevenueKPIs(ctx, r, f)
	require.NoError(t, err)

	count := 0
	sum := decimal.Zero
	for _, b := range series {
		count += b.Count
		sum = sum.Add(b.AmountSum)
	}
	assert.Equal(t, kpis.Count, count)
	assert.True(t, kpis.AmountSum.Equal(sum))
}

func TestAggregator_Revenue_RangeExcludes(t *testing.T) {
	// GIVEN: A range covering January only
	agg, _ := newAggregatorFixture(t)

	r, err := membership.ParseDateRange("2024-01-01", "2024-01-31", time.UTC)
	require.NoError(t, err)

	s, err := agg.RevenueKPIs(context.Background(), r, report.Filters{})
	require.NoError(t, err)

	// THEN: The February payment is out
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, "2000.00", s.AmountSum.StringFixed(2))
}

func TestAggregator_RevenueBreakdown(t *testing.T) {
	agg, _ := newAggregatorFixture(t)

	r, err := membership.ParseDateRange("2024-01-01", "2024-12-31", time.UTC)
	require.NoError(t, err)

	buckets, err := agg.RevenueBreakdown(context.Background(), r, report.DimensionMethod, report.Filters{})
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, "cash", buckets[0].Category)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, "transfer", buckets[1].Category)
	assert.Equal(t, 1, buckets[1].Count)
}

func TestAggregator_Revenue_ChannelFilter(t *testing.T) {
	agg, _ := newAggregatorFixture(t)
	ctx := context.Background()

	r, err := membership.ParseDateRange("2024-01-01", "2024-12-31", time.UTC)
	require.NoError(t, err)

	s, err := agg.RevenueKPIs(ctx, r, report.Filters{Method: membership.MethodTransfer, Channel: "mercadopago"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)

	// Channel without method is rejected before touching the source
	_, err = agg.RevenueKPIs(ctx, r, report.Filters{Channel: "mercadopago"})
	assert.True(t, membership.IsValidation(err))
}

func TestAggregator_InvalidRange(t *testing.T) {
	agg, _ := newAggregatorFixture(t)

	bad := membership.DateRange{
		From:        time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		ToExclusive: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := agg.Revenue(context.Background(), bad, membership.BucketMonth, report.Filters{})
	assert.True(t, membership.IsValidation(err))
}

// =============================================================================
// ATTENDANCE AND SIGNUP SERIES TESTS
// =============================================================================

func TestAggregator_AttendanceSeries(t *testing.T) {
	agg, mem := newAggregatorFixture(t)
	ctx := context.Background()

	clients, _, err := mem.ListClients(ctx, "", membership.SortSpec{Key: membership.SortByFullName, Dir: membership.SortAsc}, membership.PageRequest{})
	require.NoError(t, err)
	clientID := clients[0].ID

	checkin := func(at time.Time) {
		mem.Clock = membership.FixedClock{T: at}
		_, err := mem.Checkin(ctx, membership.CheckinInput{ClientID: clientID})
		require.NoError(t, err)
	}
	checkin(time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC))
	checkin(time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC))
	checkin(time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC))

	r, err := membership.ParseDateRange("2024-03-01", "2024-03-31", time.UTC)
	require.NoError(t, err)

	series, err := agg.AttendanceSeries(ctx, r, membership.BucketDay)
	require.NoError(t, err)

	require.Len(t, series, 2)
	assert.Equal(t, 2, series[0].Count, "both same-day check-ins counted")
	assert.Equal(t, 1, series[1].Count)
}

func TestAggregator_NewClientsSeries(t *testing.T) {
	agg, _ := newAggregatorFixture(t)

	// Both fixture clients joined on Dec 1 2023
	r, err := membership.ParseDateRange("2023-12-01", "2023-12-31", time.UTC)
	require.NoError(t, err)

	series, err := agg.NewClientsSeries(context.Background(), r, membership.BucketMonth)
	require.NoError(t, err)

	require.Len(t, series, 1)
	assert.Equal(t, 2, series[0].Count)
}
