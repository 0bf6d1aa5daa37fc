/*
resolver.go - The claim-resolution state machine

PURPOSE:
  Orchestrates a single claim attempt: normalization, ledger check,
  storefront lookup, ownership and payment validation, entitlement
  grant, and ledger commit. Each invocation is a fresh linear run with
  no persistence between calls.

STATES (in order, each terminal on failure):
  1. Normalize          -> InvalidReference
  2. CheckLedger        -> AlreadyClaimed (no remote call made)
  3. RemoteLookup       -> InvoiceNotFound | LookupFailed
  4. ValidateOwnership  -> EmailMismatch (exact, case-sensitive)
  5. ValidatePayment    -> InvoiceUnpaid
  6. Grant              -> failure logged, does not abort
  7. CommitLedger       -> LedgerCommitFailed
  8.                    -> Claimed

CONCURRENCY:
  Interleaved attempts suspend during the remote lookup, so two attempts
  for the same key can both pass step 2 before either commits. The
  resolver therefore holds a per-key lock across the whole check..commit
  span: for N concurrent attempts on a fresh key, exactly one reaches
  Claimed and the rest reach AlreadyClaimed. Distinct keys never block
  each other.

SEE ALSO:
  - ledger.go:  Ledger contract
  - outcome.go: Terminal outcomes
*/
package claim

import (
	"context"
	"log"
	"sync"
	"time"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// InvoiceRecord is the slice of the storefront's invoice the resolver
// validates against. The presentation layer reads the full record via
// the storefront client directly; the resolver needs only these fields.
type InvoiceRecord struct {
	// Email is the purchaser's email as the storefront recorded it.
	Email string

	// CompletedAt is the payment completion timestamp, nil while the
	// invoice is unpaid.
	CompletedAt *time.Time
}

// InvoiceLookup fetches the storefront's record for a canonical key.
type InvoiceLookup interface {
	// Fetch returns the record, or found=false when the storefront has
	// no invoice for the key. Any error is an operational failure.
	Fetch(ctx context.Context, key InvoiceKey) (rec *InvoiceRecord, found bool, err error)
}

// Granter attaches the entitlement to a claimant. A single immediate
// attempt is made per successful claim; the resolver does not retry or
// reconcile grants.
type Granter interface {
	Grant(ctx context.Context, claimant ClaimantID) error
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver runs the claim-resolution state machine.
type Resolver struct {
	ledger  Ledger
	lookup  InvoiceLookup
	granter Granter
	logger  *log.Logger

	locks keyLocks
}

// NewResolver wires a resolver. logger may be nil, in which case the
// standard logger is used.
func NewResolver(ledger Ledger, lookup InvoiceLookup, granter Granter, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		ledger:  ledger,
		lookup:  lookup,
		granter: granter,
		logger:  logger,
	}
}

// Resolve runs one claim attempt and always returns exactly one
// terminal resolution. Either the claim is fully committed (ledger
// updated, grant requested) or it is not recorded at all.
func (r *Resolver) Resolve(ctx context.Context, rawReference, claimantEmail string, claimant ClaimantID) Resolution {
	// 1. Normalize
	key := NormalizeReference(rawReference)
	if key == "" {
		return Resolution{Outcome: OutcomeInvalidReference}
	}

	// Serialize check..commit for this key. Attempts on other keys
	// proceed concurrently.
	unlock := r.locks.acquire(key)
	defer unlock()

	// 2. CheckLedger - before any remote call, so a redeemed invoice
	// never incurs a lookup or re-triggers a grant.
	claimed, err := r.ledger.IsClaimed(ctx, key)
	if err != nil {
		r.logger.Printf("claim: ledger read for %q failed: %v", key, err)
		return Resolution{Outcome: OutcomeLedgerCommitFailed, Key: key, Err: &CommitError{Key: key, Err: err}}
	}
	if claimed {
		return Resolution{Outcome: OutcomeAlreadyClaimed, Key: key}
	}

	// 3. RemoteLookup
	rec, found, err := r.lookup.Fetch(ctx, key)
	if err != nil {
		lerr := &LookupError{Key: key, Err: err}
		r.logger.Printf("claim: %v", lerr)
		return Resolution{Outcome: OutcomeLookupFailed, Key: key, Err: lerr}
	}
	if !found {
		return Resolution{Outcome: OutcomeInvoiceNotFound, Key: key}
	}

	// 4. ValidateOwnership - exact, case-sensitive comparison.
	if rec.Email != claimantEmail {
		return Resolution{Outcome: OutcomeEmailMismatch, Key: key}
	}

	// 5. ValidatePayment
	if rec.CompletedAt == nil {
		return Resolution{Outcome: OutcomeInvoiceUnpaid, Key: key}
	}

	// 6. Grant - a failure is logged for reconciliation but does not
	// abort the commit.
	var grantErr error
	if grantErr = r.granter.Grant(ctx, claimant); grantErr != nil {
		r.logger.Printf("claim: grant for %s on invoice %q failed: %v", claimant, key, grantErr)
	}

	// 7. CommitLedger - never report success on a failed commit.
	if err := r.ledger.RecordClaim(ctx, key, claimant); err != nil {
		if IsDuplicate(err) {
			return Resolution{Outcome: OutcomeAlreadyClaimed, Key: key}
		}
		cerr := &CommitError{Key: key, Err: err}
		r.logger.Printf("claim: %v", cerr)
		return Resolution{Outcome: OutcomeLedgerCommitFailed, Key: key, Err: cerr}
	}

	// 8. Claimed
	return Resolution{Outcome: OutcomeClaimed, Key: key, GrantErr: grantErr}
}

// =============================================================================
// PER-KEY LOCKS
// =============================================================================

// keyLocks hands out one mutex per invoice key, reference-counted so
// the map does not grow with every key ever attempted.
type keyLocks struct {
	mu   sync.Mutex
	held map[InvoiceKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyLocks) acquire(key InvoiceKey) (release func()) {
	k.mu.Lock()
	if k.held == nil {
		k.held = make(map[InvoiceKey]*keyLock)
	}
	l := k.held[key]
	if l == nil {
		l = &keyLock{}
		k.held[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.held, key)
		}
		k.mu.Unlock()
	}
}
