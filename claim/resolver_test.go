/*
resolver_test.go - State machine and concurrency tests

Tests for:
- Each terminal outcome of a resolution
- Ledger/grant/commit interplay (no partial state)
- The single-winner invariant under concurrent attempts
*/
package claim_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendra/claim-engine/claim"
	"github.com/vendra/claim-engine/store/memory"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// fakeLookup serves a fixed set of invoices and counts fetches.
type fakeLookup struct {
	invoices map[claim.InvoiceKey]*claim.InvoiceRecord
	err      error
	delay    time.Duration

	fetches atomic.Int64
}

func (f *fakeLookup) Fetch(_ context.Context, key claim.InvoiceKey) (*claim.InvoiceRecord, bool, error) {
	f.fetches.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, false, f.err
	}
	rec, ok := f.invoices[key]
	if !ok {
		return nil, false, nil
	}
	return rec, true, nil
}

// fakeGranter counts grants and optionally fails.
type fakeGranter struct {
	err    error
	grants atomic.Int64
}

func (f *fakeGranter) Grant(context.Context, claim.ClaimantID) error {
	f.grants.Add(1)
	return f.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func paidInvoice(email string) *claim.InvoiceRecord {
	completed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	return &claim.InvoiceRecord{Email: email, CompletedAt: &completed}
}

// =============================================================================
// STATE MACHINE TESTS
// =============================================================================

func TestResolve_Claimed(t *testing.T) {
	// GIVEN: Invoice 42 unseen, paid, owned by a@b.com
	// WHEN: The owner claims it with the matching email
	// THEN: Claimed, ledger records it, grant requested exactly once

	ledger := memory.New()
	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
		"42": paidInvoice("a@b.com"),
	}}
	granter := &fakeGranter{}
	r := claim.NewResolver(ledger, lookup, granter, quietLogger())

	res := r.Resolve(context.Background(), "SHOP-0042", "a@b.com", "userA")

	assert.Equal(t, claim.OutcomeClaimed, res.Outcome)
	assert.Equal(t, claim.InvoiceKey("42"), res.Key)
	assert.NoError(t, res.GrantErr)
	assert.Equal(t, int64(1), granter.grants.Load(), "grant requested exactly once")

	claimed, err := ledger.IsClaimed(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, claim.ClaimantID("userA"), ledger.Claims()["42"])
}

func TestResolve_AlreadyClaimed_NoRemoteCall(t *testing.T) {
	// GIVEN: Invoice 42 already redeemed by userA
	// WHEN: userB claims it again
	// THEN: AlreadyClaimed with zero remote calls and an unchanged ledger

	ledger := memory.New()
	require.NoError(t, ledger.RecordClaim(context.Background(), "42", "userA"))

	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
		"42": paidInvoice("a@b.com"),
	}}
	granter := &fakeGranter{}
	r := claim.NewResolver(ledger, lookup, granter, quietLogger())

	res := r.Resolve(context.Background(), "42", "b@c.com", "userB")

	assert.Equal(t, claim.OutcomeAlreadyClaimed, res.Outcome)
	assert.Equal(t, claim.InvoiceKey("42"), res.Key)
	assert.Equal(t, int64(0), lookup.fetches.Load(), "ledger check happens before any remote call")
	assert.Equal(t, int64(0), granter.grants.Load())
	assert.Equal(t, claim.ClaimantID("userA"), ledger.Claims()["42"], "ledger unchanged")
}

func TestResolve_InvoiceUnpaid(t *testing.T) {
	// GIVEN: Invoice 42 exists but has no completion timestamp
	// WHEN: The owner claims it
	// THEN: InvoiceUnpaid, ledger unchanged, no grant requested

	ledger := memory.New()
	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
		"42": {Email: "a@b.com"},
	}}
	granter := &fakeGranter{}
	r := claim.NewResolver(ledger, lookup, granter, quietLogger())

	res := r.Resolve(context.Background(), "42", "a@b.com", "userA")

	assert.Equal(t, claim.OutcomeInvoiceUnpaid, res.Outcome)
	assert.Equal(t, 0, ledger.Len())
	assert.Equal(t, int64(0), granter.grants.Load())
}

func TestResolve_EmailMismatch(t *testing.T) {
	// GIVEN: Invoice 42 owned by a@b.com
	// WHEN: A claimant supplies a different email
	// THEN: EmailMismatch, ledger unchanged

	ledger := memory.New()
	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
		"42": paidInvoice("a@b.com"),
	}}
	granter := &fakeGranter{}
	r := claim.NewResolver(ledger, lookup, granter, quietLogger())

	res := r.Resolve(context.Background(), "42", "other@b.com", "userA")

	assert.Equal(t, claim.OutcomeEmailMismatch, res.Outcome)
	assert.Equal(t, 0, ledger.Len())
	assert.Equal(t, int64(0), granter.grants.Load())
}

func TestResolve_EmailComparisonIsCaseSensitive(t *testing.T) {
	ledger := memory.New()
	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
		"42": paidInvoice("a@b.com"),
	}}
	r := claim.NewResolver(ledger, lookup, &fakeGranter{}, quietLogger())

	res := r.Resolve(context.Background(), "42", "A@B.com", "userA")

	assert.Equal(t, claim.OutcomeEmailMismatch, res.Outcome)
}

func TestResolve_InvoiceNotFound(t *testing.T) {
	// GIVEN: The storefront has no invoice 99
	// WHEN: Someone claims it
	// THEN: InvoiceNotFound, ledger unchanged

	ledger := memory.New()
	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{}}
	r := claim.NewResolver(ledger, lookup, &fakeGranter{}, quietLogger())

	res := r.Resolve(context.Background(), "99", "a@b.com", "userA")

	assert.Equal(t, claim.OutcomeInvoiceNotFound, res.Outcome)
	assert.Equal(t, claim.InvoiceKey("99"), res.Key)
	assert.Equal(t, 0, ledger.Len())
}

func TestResolve_InvalidReference(t *testing.T) {
	// All-zero and all-delimiter references collapse to an empty key
	// and are rejected before the ledger or the storefront is touched.

	ledger := memory.New()
	lookup := &fakeLookup{}
	r := claim.NewResolver(ledger, lookup, &fakeGranter{}, quietLogger())

	for _, raw := range []string{"", "0000", "---", "SHOP-000"} {
		res := r.Resolve(context.Background(), raw, "a@b.com", "userA")
		assert.Equal(t, claim.OutcomeInvalidReference, res.Outcome, "raw=%q", raw)
	}
	assert.Equal(t, int64(0), lookup.fetches.Load())
}

func TestResolve_LookupFailed(t *testing.T) {
	// GIVEN: The storefront is down
	// WHEN: Someone claims an unseen invoice
	// THEN: LookupFailed with operator detail, ledger unchanged

	ledger := memory.New()
	lookup := &fakeLookup{err: errors.New("connection refused")}
	r := claim.NewResolver(ledger, lookup, &fakeGranter{}, quietLogger())

	res := r.Resolve(context.Background(), "42", "a@b.com", "userA")

	assert.Equal(t, claim.OutcomeLookupFailed, res.Outcome)
	require.Error(t, res.Err)
	var lerr *claim.LookupError
	assert.ErrorAs(t, res.Err, &lerr)
	assert.Equal(t, 0, ledger.Len())
}

func TestResolve_CommitFailure_NeverReportsSuccess(t *testing.T) {
	// GIVEN: A ledger whose writes fail
	// WHEN: An otherwise valid claim resolves
	// THEN: LedgerCommitFailed and a later retry can still win

	ledger := memory.New()
	ledger.WriteErr = errors.New("disk full")
	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
		"42": paidInvoice("a@b.com"),
	}}
	granter := &fakeGranter{}
	r := claim.NewResolver(ledger, lookup, granter, quietLogger())

	res := r.Resolve(context.Background(), "42", "a@b.com", "userA")

	assert.Equal(t, claim.OutcomeLedgerCommitFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, claim.ErrLedgerCommit)
	assert.Equal(t, 0, ledger.Len(), "failed commit leaves no record")

	// Storage recovers; the retry succeeds.
	ledger.WriteErr = nil
	res = r.Resolve(context.Background(), "42", "a@b.com", "userA")
	assert.Equal(t, claim.OutcomeClaimed, res.Outcome)
}

func TestResolve_GrantFailureStillCommits(t *testing.T) {
	// A failed role assignment is logged but does not abort the ledger
	// commit; the outcome carries the grant error for reconciliation.

	ledger := memory.New()
	lookup := &fakeLookup{invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
		"42": paidInvoice("a@b.com"),
	}}
	granter := &fakeGranter{err: errors.New("missing permission")}
	r := claim.NewResolver(ledger, lookup, granter, quietLogger())

	res := r.Resolve(context.Background(), "42", "a@b.com", "userA")

	assert.Equal(t, claim.OutcomeClaimed, res.Outcome)
	assert.Error(t, res.GrantErr)
	assert.Equal(t, 1, ledger.Len())
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestResolve_ConcurrentAttempts_ExactlyOneWinner(t *testing.T) {
	// GIVEN: N concurrent attempts on a never-before-seen key, with the
	//        remote lookup slow enough to interleave naively
	// THEN: Exactly one reaches Claimed; the rest reach AlreadyClaimed;
	//       the grant is requested exactly once

	const attempts = 32

	ledger := memory.New()
	lookup := &fakeLookup{
		invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
			"42": paidInvoice("a@b.com"),
		},
		delay: 5 * time.Millisecond,
	}
	granter := &fakeGranter{}
	r := claim.NewResolver(ledger, lookup, granter, quietLogger())

	var wg sync.WaitGroup
	outcomes := make([]claim.Outcome, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := r.Resolve(context.Background(), "SHOP-0042", "a@b.com", "userA")
			outcomes[i] = res.Outcome
		}(i)
	}
	wg.Wait()

	var claimed, already int
	for _, o := range outcomes {
		switch o {
		case claim.OutcomeClaimed:
			claimed++
		case claim.OutcomeAlreadyClaimed:
			already++
		default:
			t.Fatalf("unexpected outcome %s", o)
		}
	}

	assert.Equal(t, 1, claimed, "exactly one winner")
	assert.Equal(t, attempts-1, already)
	assert.Equal(t, int64(1), granter.grants.Load(), "grant requested exactly once")
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, int64(1), lookup.fetches.Load(), "losers never reach the storefront")
}

func TestResolve_DistinctKeysDoNotSerialize(t *testing.T) {
	// Two slow lookups on different keys run concurrently; the per-key
	// lock must not degrade into a global one.

	ledger := memory.New()
	lookup := &fakeLookup{
		invoices: map[claim.InvoiceKey]*claim.InvoiceRecord{
			"1": paidInvoice("a@b.com"),
			"2": paidInvoice("b@c.com"),
		},
		delay: 50 * time.Millisecond,
	}
	r := claim.NewResolver(ledger, lookup, &fakeGranter{}, quietLogger())

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.Resolve(context.Background(), "1", "a@b.com", "userA")
	}()
	go func() {
		defer wg.Done()
		r.Resolve(context.Background(), "2", "b@c.com", "userB")
	}()
	wg.Wait()

	assert.Less(t, time.Since(start), 95*time.Millisecond, "distinct keys resolved in parallel")
	assert.Equal(t, 2, ledger.Len())
}
