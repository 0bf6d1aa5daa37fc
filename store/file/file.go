/*
Package file provides the JSON-file claim ledger.

PURPOSE:
  The default durable backend: a single file holding a flat JSON object
  mapping invoice key to claimant id. Loaded once at open; rewritten in
  full after every successful claim.

DURABILITY:
  - An absent file is an empty ledger; the file is created immediately
    on open so it is the source of truth from first run.
  - RecordClaim persists before returning. Writes go to a temp file in
    the same directory and are renamed into place, so a crash mid-write
    never truncates the ledger.
  - On a persistence failure the in-memory insert is rolled back; the
    in-memory and on-disk mappings never diverge.

CONCURRENCY:
  Guarded by a mutex. The resolver additionally serializes check+commit
  per key; this lock only protects the map and the file rewrite.

SEE ALSO:
  - claim/ledger.go:  Interface and invariants
  - store/sqlite:     Database-backed alternative
*/
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vendra/claim-engine/claim"
)

// Ledger is a file-backed claim.Ledger.
type Ledger struct {
	mu     sync.Mutex
	path   string
	claims map[claim.InvoiceKey]claim.ClaimantID
}

// Open loads the ledger at path, creating an empty one if the file does
// not exist.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		path:   path,
		claims: make(map[claim.InvoiceKey]claim.ClaimantID),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: establish the file as the durable source of truth.
		if err := l.persist(); err != nil {
			return nil, fmt.Errorf("failed to initialize ledger file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	default:
		if err := json.Unmarshal(data, &l.claims); err != nil {
			return nil, fmt.Errorf("failed to parse ledger file %s: %w", path, err)
		}
	}

	return l, nil
}

// IsClaimed reports whether the key has been redeemed.
func (l *Ledger) IsClaimed(_ context.Context, key claim.InvoiceKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.claims[key]
	return ok, nil
}

// RecordClaim inserts the pair and rewrites the file before returning.
// The insert is rolled back if the rewrite fails.
func (l *Ledger) RecordClaim(_ context.Context, key claim.InvoiceKey, claimant claim.ClaimantID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.claims[key]; ok {
		return claim.ErrAlreadyClaimed
	}

	l.claims[key] = claimant
	if err := l.persist(); err != nil {
		delete(l.claims, key)
		return fmt.Errorf("failed to persist ledger: %w", err)
	}
	return nil
}

// Claims returns a copy of the mapping.
func (l *Ledger) Claims() map[claim.InvoiceKey]claim.ClaimantID {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[claim.InvoiceKey]claim.ClaimantID, len(l.claims))
	for k, v := range l.claims {
		out[k] = v
	}
	return out
}

// persist rewrites the whole mapping. Caller holds l.mu.
func (l *Ledger) persist() error {
	data, err := json.MarshalIndent(l.claims, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".claims-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
