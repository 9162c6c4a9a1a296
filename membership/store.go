/*
store.go - Persistence interfaces consumed by the core

PURPOSE:
  Defines the narrow interfaces between the engine and whatever owns the
  rows. The core consumes these; store/sqlite implements them against a
  relational store, membership/store holds an in-memory implementation
  for tests and dev.

OWNERSHIP:
  PaymentStore    owns Payment rows (the ledger).
  ClientStore     is the client collaborator's surface: the core only
                  reads id, join date, and the active flag.
  AttendanceStore owns the append-only check-in stream.

LEDGER CONTRACT:
  CreatePayment must be atomic: if a concurrent writer already inserted
  the same (client, period), the call fails with ConflictError and
  performs no partial mutation. The check happens at the storage
  constraint; implementations must not check-then-insert.

  PaymentsForClient orders by period year desc, month desc, then
  creation time desc. The status resolver depends on that ordering.

SEE ALSO:
  - store/sqlite/sqlite.go: Relational implementation
  - membership/store/memory.go: In-memory implementation
*/
package membership

import "context"

// =============================================================================
// LEDGER STORE
// =============================================================================

type PaymentStore interface {
	// CreatePayment validates the input, then inserts atomically.
	// Returns ConflictError if the (client, period) pair already exists,
	// ErrClientNotFound if the client reference is dangling.
	CreatePayment(ctx context.Context, in CreatePaymentInput) (Payment, error)

	// GetPayment returns a payment by id, or ErrPaymentNotFound.
	GetPayment(ctx context.Context, id string) (Payment, error)

	// DeletePayment removes a payment, or returns ErrPaymentNotFound.
	// The only mutation besides create; payments are never updated.
	DeletePayment(ctx context.Context, id string) error

	// PaymentsForClient returns the client's full ledger, most recent
	// period first (year desc, month desc, created_at desc).
	PaymentsForClient(ctx context.Context, clientID string) ([]Payment, error)

	// ListPayments returns one page plus the filtered-but-unpaginated
	// total count.
	ListPayments(ctx context.Context, f PaymentFilter, sort SortSpec, page PageRequest) ([]Payment, int, error)
}

// =============================================================================
// CLIENT COLLABORATOR
// =============================================================================

type ClientStore interface {
	CreateClient(ctx context.Context, in CreateClientInput) (Client, error)

	// GetClient returns a client by id, or ErrClientNotFound.
	GetClient(ctx context.Context, id string) (Client, error)

	// UpdateClient applies a partial update, or returns ErrClientNotFound.
	UpdateClient(ctx context.Context, id string, in UpdateClientInput) (Client, error)

	// DeleteClient removes a client and, by ownership, its payments and
	// attendance rows.
	DeleteClient(ctx context.Context, id string) error

	// ListClients returns one page matched by a free-text search over
	// name, email, and phone, plus the unpaginated total.
	ListClients(ctx context.Context, search string, sort SortSpec, page PageRequest) ([]Client, int, error)
}

// =============================================================================
// ATTENDANCE PROVIDER
// =============================================================================

type AttendanceStore interface {
	// Checkin appends a check-in event. Multiple check-ins per day are
	// valid; the stream is never deduplicated.
	Checkin(ctx context.Context, in CheckinInput) (Attendance, error)

	// AttendanceForClient returns a client's check-ins within the range,
	// oldest first.
	AttendanceForClient(ctx context.Context, clientID string, r DateRange) ([]Attendance, error)
}
