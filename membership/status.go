/*
status.go - Up-to-date status derivation

PURPOSE:
  Answers "is this client current on payment?". The rule is a pure
  function of the single latest-period payment against the current
  billing period: no payment counts, no amount sums.

ALGORITHM:
  1. Fetch the client's ledger via PaymentStore (most recent period first;
     the store ordering is load-bearing here).
  2. No payments -> not up to date, period fields absent.
  3. Otherwise up to date iff the latest period covers the current period
     or a later one. Prepayment for future periods counts; there is no
     cap on how far ahead a period may be.
*/
package membership

import "context"

// =============================================================================
// STATUS RESOLVER
// =============================================================================

// ClientStatus is the derived payment standing for one client.
// LastPaymentMonth/Year are nil when the client has no payments at all.
type ClientStatus struct {
	ClientID         string
	FullName         string
	IsUpToDate       bool
	LastPaymentMonth *int
	LastPaymentYear  *int
}

// StatusResolver derives ClientStatus from the ledger and the clock.
type StatusResolver struct {
	Payments PaymentStore
	Clients  ClientStore
	Clock    Clock
}

func NewStatusResolver(payments PaymentStore, clients ClientStore, clock Clock) *StatusResolver {
	return &StatusResolver{Payments: payments, Clients: clients, Clock: clock}
}

// Resolve returns the client's standing, or ErrClientNotFound.
func (r *StatusResolver) Resolve(ctx context.Context, clientID string) (ClientStatus, error) {
	client, err := r.Clients.GetClient(ctx, clientID)
	if err != nil {
		return ClientStatus{}, err
	}

	status := ClientStatus{ClientID: client.ID, FullName: client.FullName}

	payments, err := r.Payments.PaymentsForClient(ctx, clientID)
	if err != nil {
		return ClientStatus{}, err
	}
	if len(payments) == 0 {
		return status, nil
	}

	// First element is the most recent period by the store's ordering.
	latest := payments[0].Period
	status.LastPaymentMonth = &latest.Month
	status.LastPaymentYear = &latest.Year
	status.IsUpToDate = latest.CoversOrAfter(CurrentPeriod(r.Clock))
	return status, nil
}
