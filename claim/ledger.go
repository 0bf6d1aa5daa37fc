/*
ledger.go - Claim ledger interface

PURPOSE:
  The Ledger is the single source of truth for "has this invoice already
  been redeemed". Every resolution reads it before any remote call and
  writes it after a successful claim.

CRITICAL INVARIANTS:
  1. AT-MOST-ONCE: At most one claimant per invoice key, ever.
  2. PERMANENT: No update, no delete. Claims are never revoked here.
  3. DURABLE: RecordClaim persists before returning. The in-memory view
     and the durable view must never diverge; on a persistence failure
     the insert is rolled back so a retry is not silently skipped.

IMPLEMENTATIONS:
  - store/file:   JSON file, full rewrite per commit (default)
  - store/sqlite: SQLite table with a unique key constraint
  - store/memory: In-memory map for tests

SEE ALSO:
  - resolver.go: Serializes check+commit per key; see its concurrency note
*/
package claim

import "context"

// Ledger records which invoice keys have been redeemed and by whom.
//
// Implementations must be safe for concurrent use: the resolver
// serializes check+commit per invoice key, but distinct keys are
// resolved concurrently.
type Ledger interface {
	// IsClaimed reports whether the key has been redeemed.
	IsClaimed(ctx context.Context, key InvoiceKey) (bool, error)

	// RecordClaim inserts the pair and persists the ledger before
	// returning. Returns ErrAlreadyClaimed if the key is present.
	// This is the ONLY write operation; claims are permanent.
	RecordClaim(ctx context.Context, key InvoiceKey, claimant ClaimantID) error
}
