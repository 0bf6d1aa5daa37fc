// Package memory provides an in-memory claim ledger for tests and
// development. Supports failure injection for exercising commit-failure
// paths.
package memory

import (
	"context"
	"sync"

	"github.com/vendra/claim-engine/claim"
)

// Ledger is an in-memory claim.Ledger.
type Ledger struct {
	mu     sync.RWMutex
	claims map[claim.InvoiceKey]claim.ClaimantID

	// WriteErr, when set, makes RecordClaim fail without mutating the
	// mapping. For tests.
	WriteErr error
}

func New() *Ledger {
	return &Ledger{claims: make(map[claim.InvoiceKey]claim.ClaimantID)}
}

// IsClaimed reports whether the key has been redeemed.
func (l *Ledger) IsClaimed(_ context.Context, key claim.InvoiceKey) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.claims[key]
	return ok, nil
}

// RecordClaim inserts the pair. Permanent; no update, no delete.
func (l *Ledger) RecordClaim(_ context.Context, key claim.InvoiceKey, claimant claim.ClaimantID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.WriteErr != nil {
		return l.WriteErr
	}
	if _, ok := l.claims[key]; ok {
		return claim.ErrAlreadyClaimed
	}
	l.claims[key] = claimant
	return nil
}

// Claims returns a copy of the mapping.
func (l *Ledger) Claims() map[claim.InvoiceKey]claim.ClaimantID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[claim.InvoiceKey]claim.ClaimantID, len(l.claims))
	for k, v := range l.claims {
		out[k] = v
	}
	return out
}

// Len returns the number of recorded claims.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.claims)
}
