package claim

// =============================================================================
// OUTCOMES - Terminal states of a resolution
// =============================================================================

// Outcome is the terminal state of a claim resolution. Outcomes are
// mutually exclusive and exhaustive: every resolution produces exactly
// one, and no outcome implies partial state.
type Outcome string

const (
	// OutcomeInvalidReference: the reference collapsed to an empty key.
	OutcomeInvalidReference Outcome = "invalid_reference"

	// OutcomeAlreadyClaimed: the key was redeemed by an earlier claim.
	// Decided before any remote call.
	OutcomeAlreadyClaimed Outcome = "already_claimed"

	// OutcomeInvoiceNotFound: the storefront has no invoice for the key.
	OutcomeInvoiceNotFound Outcome = "invoice_not_found"

	// OutcomeLookupFailed: the storefront call failed. Operator detail is
	// logged; the user sees a generic notice.
	OutcomeLookupFailed Outcome = "lookup_failed"

	// OutcomeEmailMismatch: the invoice belongs to a different email.
	OutcomeEmailMismatch Outcome = "email_mismatch"

	// OutcomeInvoiceUnpaid: the invoice has no completion timestamp.
	OutcomeInvoiceUnpaid Outcome = "invoice_unpaid"

	// OutcomeLedgerCommitFailed: the claim could not be durably recorded.
	// The user is never told they are entitled on this outcome.
	OutcomeLedgerCommitFailed Outcome = "ledger_commit_failed"

	// OutcomeClaimed: the claim is fully committed and the grant was
	// requested.
	OutcomeClaimed Outcome = "claimed"
)

// Resolution is the result of a single claim attempt.
type Resolution struct {
	Outcome Outcome

	// Key is the canonical invoice key, empty for InvalidReference.
	Key InvoiceKey

	// Err carries operator detail for LookupFailed and
	// LedgerCommitFailed. Never surfaced to the end user.
	Err error

	// GrantErr records a failed entitlement grant on an otherwise
	// successful claim. Logged for reconciliation; the claim still
	// commits.
	GrantErr error
}
