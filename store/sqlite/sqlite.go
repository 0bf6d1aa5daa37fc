/*
Package sqlite provides a SQLite-backed claim ledger.

PURPOSE:
  A database alternative to the JSON-file ledger for deployments that
  already run on a persistent volume with other SQLite state. The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

AT-MOST-ONCE ENFORCEMENT:
  The claims table has the invoice key as PRIMARY KEY; a duplicate
  insert surfaces as claim.ErrAlreadyClaimed. No UPDATE or DELETE
  statements exist - claims are permanent.

WAL MODE:
  Opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  ledger, err := sqlite.Open("./data/claims.db")
  if err != nil {
      log.Fatal(err)
  }
  defer ledger.Close()

SEE ALSO:
  - claim/ledger.go: Interface and invariants
  - store/file:      File-backed default
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vendra/claim-engine/claim"
)

// Ledger is a SQLite-backed claim.Ledger.
type Ledger struct {
	db *sql.DB
}

// Open creates a new SQLite ledger at the given database path.
// Use ":memory:" for an in-memory database.
func Open(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// migrate creates the schema.
func (l *Ledger) migrate() error {
	schema := `
	-- Claims (permanent, at most one claimant per invoice key)
	CREATE TABLE IF NOT EXISTS claims (
		invoice_key TEXT PRIMARY KEY,
		claimant_id TEXT NOT NULL,
		claimed_at  TEXT NOT NULL
	);
	`
	_, err := l.db.Exec(schema)
	return err
}

// IsClaimed reports whether the key has been redeemed.
func (l *Ledger) IsClaimed(ctx context.Context, key claim.InvoiceKey) (bool, error) {
	var count int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE invoice_key = ?`, string(key),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordClaim inserts the pair. Returns claim.ErrAlreadyClaimed if the
// key is present; the table is never updated or deleted from.
func (l *Ledger) RecordClaim(ctx context.Context, key claim.InvoiceKey, claimant claim.ClaimantID) error {
	res, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO claims (invoice_key, claimant_id, claimed_at) VALUES (?, ?, ?)`,
		string(key), string(claimant), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return claim.ErrAlreadyClaimed
	}
	return nil
}

// Claims returns the full mapping, for operator inspection.
func (l *Ledger) Claims(ctx context.Context) (map[claim.InvoiceKey]claim.ClaimantID, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT invoice_key, claimant_id FROM claims`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[claim.InvoiceKey]claim.ClaimantID)
	for rows.Next() {
		var key, claimant string
		if err := rows.Scan(&key, &claimant); err != nil {
			return nil, err
		}
		out[claim.InvoiceKey(key)] = claim.ClaimantID(claimant)
	}
	return out, rows.Err()
}
