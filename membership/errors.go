/*
errors.go - Centralized error taxonomy for the billing engine

PURPOSE:
  All error kinds in one place so callers classify outcomes explicitly
  instead of matching on strings. The API layer maps each category to an
  HTTP status; no error is ever swallowed into a silent success.

ERROR CATEGORIES:
  1. Not found    - referenced client or payment absent
  2. Conflict     - duplicate (client, period); raised from the atomic
                    write path only, store left unchanged
  3. Validation   - rejected before any write is attempted
  4. Store        - connectivity or driver failure; retryable at the
                    caller's discretion

USAGE:
  if membership.IsConflict(err) {
      // duplicate submission: terminal outcome, do not retry
  }

SEE ALSO:
  - store/sqlite: Raises ConflictError from the uniqueness constraint
  - api/handlers.go: Maps categories to HTTP statuses
*/
package membership

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicatePeriod is returned when a payment already exists for the
	// same (client, period). Raised by the storage constraint, never by a
	// prior existence check.
	ErrDuplicatePeriod = errors.New("payment for this period already exists")

	// ErrClientNotFound is returned when a referenced client doesn't exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError rejects an input before any write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a duplicate (client, period) submission. The
// write performed no mutation; resubmitting the same input fails again.
type ConflictError struct {
	ClientID string
	Period   Period
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("payment already exists for client %s period %s", e.ClientID, e.Period)
}

func (e *ConflictError) Unwrap() error { return ErrDuplicatePeriod }

// StoreError wraps a driver-level failure. Distinct from the business
// categories so callers can decide to retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error is a missing client or payment.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrPaymentNotFound)
}

// IsConflict reports a uniqueness violation at the storage boundary.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicatePeriod)
}

// IsValidation reports an input rejected before any write.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports a storage-level failure.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
