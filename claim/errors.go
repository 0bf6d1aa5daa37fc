/*
errors.go - Centralized error types for the claim engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Storage backends and collaborators wrap these errors with additional
  context.

ERROR CATEGORIES:
  1. Ledger errors - Claim persistence failures and duplicates
  2. Lookup errors - Storefront API failures
  3. Grant errors  - Platform role-assignment failures

USAGE:
  Backends return the sentinels directly or wrapped:

    if errors.Is(err, claim.ErrAlreadyClaimed) {
        ...
    }
*/
package claim

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAlreadyClaimed is returned by RecordClaim when the invoice key is
	// already present in the ledger. First successful claim wins; claims
	// are permanent.
	ErrAlreadyClaimed = errors.New("invoice already claimed")

	// ErrInvoiceNotFound is returned by lookup implementations when the
	// storefront has no invoice for the key. This is an expected outcome,
	// not an operational failure.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrLedgerCommit is returned when a claim cannot be durably recorded.
	ErrLedgerCommit = errors.New("ledger commit failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// LookupError wraps a storefront lookup failure with operator detail.
// Users only ever see a generic notice; the detail goes to the log.
type LookupError struct {
	Key InvoiceKey
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("invoice lookup for %q failed: %v", e.Key, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// CommitError wraps a ledger persistence failure.
type CommitError struct {
	Key InvoiceKey
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("recording claim for %q failed: %v", e.Key, e.Err)
}

func (e *CommitError) Unwrap() error {
	return ErrLedgerCommit
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing invoice.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound)
}

// IsDuplicate returns true if the error indicates the invoice key was
// already claimed.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadyClaimed)
}
