/*
Package membership provides the core billing and attendance engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking gym
  membership billing: the payment ledger (one payment per client per
  billing period), the up-to-date status rule, period arithmetic, and the
  list/filter/sort engine used by every paginated read.

KEY CONCEPTS IN THIS FILE (types.go):
  - Client: A gym member, owned by the client collaborator; the core only
    reads id, join date, and the active flag.
  - Payment: An immutable ledger entry for one (client, period) pair.
  - Attendance: An append-only check-in event.
  - PaymentMethod: Enumerated payment method (cash, card, transfer).

DESIGN PRINCIPLES:
  1. Immutability: Payments are never updated, only created or deleted.
  2. Precision: Uses decimal.Decimal for amounts to avoid float errors.
  3. Explicit validation: Inputs validate before any write is attempted.
  4. Narrow ownership: The core references clients by id; it never owns
     client lifecycle.

SEE ALSO:
  - period.go: Billing period arithmetic
  - status.go: Up-to-date status derivation
  - store.go: Persistence interfaces
  - errors.go: Error taxonomy
*/
package membership

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT METHOD - Enumerated, with an optional sub-channel for transfers
// =============================================================================

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// ParseMethod validates a method string against the known set.
func ParseMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCash, MethodCard, MethodTransfer:
		return PaymentMethod(s), nil
	}
	return "", &ValidationError{Field: "method", Reason: "unknown payment method: " + s}
}

// =============================================================================
// CLIENT - Owned by the client collaborator, referenced by id from the core
// =============================================================================

type Client struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	JoinDate  time.Time
	IsActive  bool
	CreatedBy string
}

// CreateClientInput is the validated input for creating a client.
type CreateClientInput struct {
	FullName string
	Email    string
	Phone    string
	Actor    string
}

func (in *CreateClientInput) Validate() error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.FullName == "" {
		return &ValidationError{Field: "full_name", Reason: "must not be empty"}
	}
	if len(in.FullName) > 120 {
		return &ValidationError{Field: "full_name", Reason: "must be at most 120 characters"}
	}
	if len(in.Phone) > 30 {
		return &ValidationError{Field: "phone", Reason: "must be at most 30 characters"}
	}
	return nil
}

// UpdateClientInput carries partial updates. Nil fields are left unchanged.
type UpdateClientInput struct {
	FullName *string
	Email    *string
	Phone    *string
	IsActive *bool
}

func (in *UpdateClientInput) Validate() error {
	if in.FullName != nil {
		trimmed := strings.TrimSpace(*in.FullName)
		if trimmed == "" {
			return &ValidationError{Field: "full_name", Reason: "must not be empty"}
		}
		in.FullName = &trimmed
	}
	return nil
}

// =============================================================================
// PAYMENT - The ledger entry. One per (client, period). Immutable.
// =============================================================================

type Payment struct {
	ID        string
	ClientID  string
	Amount    decimal.Decimal
	Method    PaymentMethod
	// MethodChannel is a free-text sub-channel (e.g. "mercadopago").
	// Only meaningful when Method is transfer.
	MethodChannel string
	Note          string
	Period        Period
	CreatedBy     string
	CreatedAt     time.Time
}

// CreatePaymentInput is the validated input to CreatePayment.
type CreatePaymentInput struct {
	ClientID      string
	Amount        decimal.Decimal
	Method        PaymentMethod
	MethodChannel string
	Note          string
	Period        Period
	Actor         string
}

// Validate enforces the write-side rules: amount positive with at most two
// decimal places, period in range, method known, and channel coherence
// (a channel is only allowed when method is transfer). Runs before any
// write is attempted so a rejected input never touches the store.
func (in *CreatePaymentInput) Validate() error {
	if in.ClientID == "" {
		return &ValidationError{Field: "client_id", Reason: "must not be empty"}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if in.Amount.Exponent() < -2 {
		return &ValidationError{Field: "amount", Reason: "must have at most two decimal places"}
	}
	if _, err := ParseMethod(string(in.Method)); err != nil {
		return err
	}
	if in.MethodChannel != "" && in.Method != MethodTransfer {
		return &ValidationError{Field: "method_channel", Reason: "only allowed when method is transfer"}
	}
	if len(in.Note) > 500 {
		return &ValidationError{Field: "note", Reason: "must be at most 500 characters"}
	}
	return in.Period.Validate()
}

// =============================================================================
// ATTENDANCE - Append-only check-in events. Never deduplicated.
// =============================================================================

type Attendance struct {
	ID        string
	ClientID  string
	CheckinAt time.Time
	CoachID   string
}

// CheckinInput records a check-in. Multiple check-ins per day are valid.
type CheckinInput struct {
	ClientID string
	CoachID  string
}

func (in *CheckinInput) Validate() error {
	if in.ClientID == "" {
		return &ValidationError{Field: "client_id", Reason: "must not be empty"}
	}
	return nil
}
