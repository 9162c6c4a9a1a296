package membership_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/membership-engine/membership"
	"github.com/warp/membership-engine/membership/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// march2025 fixes "now" mid-March so the current billing period is known.
var march2025 = membership.FixedClock{T: time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)}

func newStatusFixture(t *testing.T) (*membership.StatusResolver, *store.Memory, string) {
	t.Helper()
	mem := store.NewMemory()
	mem.Clock = march2025

	client, err := mem.CreateClient(context.Background(), membership.CreateClientInput{FullName: "Ana García"})
	require.NoError(t, err)

	return membership.NewStatusResolver(mem, mem, march2025), mem, client.ID
}

func pay(t *testing.T, mem *store.Memory, clientID string, month, year int) {
	t.Helper()
	_, err := mem.CreatePayment(context.Background(), membership.CreatePaymentInput{
		ClientID: clientID,
		Amount:   decimal.RequireFromString("15000.00"),
		Method:   membership.MethodCash,
		Period:   membership.Period{Month: month, Year: year},
	})
	require.NoError(t, err)
}

// =============================================================================
// STATUS DERIVATION TESTS
// =============================================================================

func TestStatusResolver_NoPayments(t *testing.T) {
	// GIVEN: A client with an empty ledger
	resolver, _, clientID := newStatusFixture(t)

	// WHEN: Resolving status
	status, err := resolver.Resolve(context.Background(), clientID)
	require.NoError(t, err)

	// THEN: Not up to date, and the latest-period fields are absent
	assert.False(t, status.IsUpToDate)
	assert.Nil(t, status.LastPaymentMonth)
	assert.Nil(t, status.LastPaymentYear)
	assert.Equal(t, "Ana García", status.FullName)
}

func TestStatusResolver_CurrentMonthPaid(t *testing.T) {
	resolver, mem, clientID := newStatusFixture(t)
	pay(t, mem, clientID, 3, 2025)

	status, err := resolver.Resolve(context.Background(), clientID)
	require.NoError(t, err)

	assert.True(t, status.IsUpToDate)
	require.NotNil(t, status.LastPaymentMonth)
	assert.Equal(t, 3, *status.LastPaymentMonth)
	assert.Equal(t, 2025, *status.LastPaymentYear)
}

func TestStatusResolver_LapsedClient(t *testing.T) {
	// GIVEN: The latest payment covers January, now is March
	resolver, mem, clientID := newStatusFixture(t)
	pay(t, mem, clientID, 12, 2024)
	pay(t, mem, clientID, 1, 2025)

	status, err := resolver.Resolve(context.Background(), clientID)
	require.NoError(t, err)

	// THEN: Behind by two periods is not up to date, and the reported
	// period is the latest one, not the first inserted
	assert.False(t, status.IsUpToDate)
	assert.Equal(t, 1, *status.LastPaymentMonth)
	assert.Equal(t, 2025, *status.LastPaymentYear)
}

func TestStatusResolver_FuturePrepayment(t *testing.T) {
	// GIVEN: A single payment for June while it is March
	resolver, mem, clientID := newStatusFixture(t)
	pay(t, mem, clientID, 6, 2025)

	status, err := resolver.Resolve(context.Background(), clientID)
	require.NoError(t, err)

	// THEN: Prepaying ahead counts as current
	assert.True(t, status.IsUpToDate)
	assert.Equal(t, 6, *status.LastPaymentMonth)
}

func TestStatusResolver_GapsDoNotMatter(t *testing.T) {
	// GIVEN: January paid, February skipped, March paid
	resolver, mem, clientID := newStatusFixture(t)
	pay(t, mem, clientID, 1, 2025)
	pay(t, mem, clientID, 3, 2025)

	status, err := resolver.Resolve(context.Background(), clientID)
	require.NoError(t, err)

	// THEN: Only the latest period is consulted; holes are irrelevant
	assert.True(t, status.IsUpToDate)
}

func TestStatusResolver_UnknownClient(t *testing.T) {
	resolver, _, _ := newStatusFixture(t)

	_, err := resolver.Resolve(context.Background(), "no-such-client")
	assert.True(t, membership.IsNotFound(err))
}
