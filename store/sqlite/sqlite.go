/*
Package sqlite provides a SQLite-backed implementation of engine.Store.

PURPOSE:
  Persists accounts and stored transactions in SQLite so the server mode
  can keep ledger state across many submitted statements within a process
  lifetime. The CLI path uses the in-memory store instead; use ":memory:"
  here to get the same single-run semantics with SQL in the loop.

TABLES:
  accounts:     one row per client (available/held as exact decimal text)
  transactions: one row per stored deposit/withdrawal + dispute state
  audit_log:    append-only journal of applied transactions and lifecycle
                steps, keyed by UUID

DECIMAL STORAGE:
  Amounts are stored as their fixed-point string form, never as SQL REAL,
  so round-tripping is exact.

CONCURRENCY:
  Guarded by a mutex; the engine itself is strictly sequential, but HTTP
  readers may overlap with processing.

SEE ALSO:
  - engine/store.go: interface definition
  - engine/store/memory.go: in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payments-engine/engine"
)

// Store implements engine.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		client INTEGER PRIMARY KEY,
		available TEXT NOT NULL,
		held TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS transactions (
		tx INTEGER PRIMARY KEY,
		client INTEGER NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		state TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_client
		ON transactions(client);

	-- Append-only journal: one row per applied transaction and per
	-- dispute-state change. Never updated, never deleted.
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		action TEXT NOT NULL,
		client INTEGER NOT NULL,
		tx INTEGER NOT NULL,
		detail TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) GetOrCreateAccount(ctx context.Context, client engine.ClientID) (engine.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, found, err := s.accountLocked(ctx, client)
	if err != nil {
		return engine.Account{}, err
	}
	if found {
		return acct, nil
	}

	acct = engine.NewAccount(client)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (client, available, held, locked) VALUES (?, ?, ?, 0)`,
		client, acct.Available.String(), acct.Held.String())
	if err != nil {
		return engine.Account{}, err
	}
	return acct, nil
}

func (s *Store) Account(ctx context.Context, client engine.ClientID) (engine.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountLocked(ctx, client)
}

func (s *Store) accountLocked(ctx context.Context, client engine.ClientID) (engine.Account, bool, error) {
	var (
		acct      = engine.Account{Client: client}
		available string
		held      string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT available, held, locked FROM accounts WHERE client = ?`, client).
		Scan(&available, &held, &acct.Locked)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Account{}, false, nil
	}
	if err != nil {
		return engine.Account{}, false, err
	}

	if acct.Available, err = engine.ParseAmount(available); err != nil {
		return engine.Account{}, false, err
	}
	if acct.Held, err = engine.ParseAmount(held); err != nil {
		return engine.Account{}, false, err
	}
	return acct, true, nil
}

func (s *Store) Accounts(ctx context.Context) ([]engine.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT client, available, held, locked FROM accounts ORDER BY client`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []engine.Account
	for rows.Next() {
		var (
			acct      engine.Account
			available string
			held      string
		)
		if err := rows.Scan(&acct.Client, &available, &held, &acct.Locked); err != nil {
			return nil, err
		}
		if acct.Available, err = engine.ParseAmount(available); err != nil {
			return nil, err
		}
		if acct.Held, err = engine.ParseAmount(held); err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

func (s *Store) MutateAccount(ctx context.Context, client engine.ClientID, fn func(*engine.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, found, err := s.accountLocked(ctx, client)
	if err != nil {
		return err
	}
	if !found {
		return engine.ErrAccountNotFound
	}

	fn(&acct)

	_, err = s.db.ExecContext(ctx,
		`UPDATE accounts SET available = ?, held = ?, locked = ? WHERE client = ?`,
		acct.Available.String(), acct.Held.String(), acct.Locked, client)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (s *Store) RecordTransaction(ctx context.Context, tx engine.StoredTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE tx = ?`, tx.Tx).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return engine.ErrDuplicateTransaction
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transactions (tx, client, kind, amount, state) VALUES (?, ?, ?, ?, ?)`,
		tx.Tx, tx.Client, string(tx.Kind), tx.Amount.String(), string(tx.State))
	if err != nil {
		return err
	}

	return s.auditLocked(ctx, "transaction_recorded", tx.Client, tx.Tx, string(tx.Kind))
}

func (s *Store) LookupTransaction(ctx context.Context, id engine.TxID) (engine.StoredTransaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		tx     = engine.StoredTransaction{Tx: id}
		kind   string
		amount string
		state  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT client, kind, amount, state FROM transactions WHERE tx = ?`, id).
		Scan(&tx.Client, &kind, &amount, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.StoredTransaction{}, false, nil
	}
	if err != nil {
		return engine.StoredTransaction{}, false, err
	}

	tx.Kind = engine.RecordKind(kind)
	tx.State = engine.DisputeState(state)
	if tx.Amount, err = engine.ParseAmount(amount); err != nil {
		return engine.StoredTransaction{}, false, err
	}
	return tx, true, nil
}

func (s *Store) SetDisputeState(ctx context.Context, id engine.TxID, state engine.DisputeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var client engine.ClientID
	err := s.db.QueryRowContext(ctx,
		`SELECT client FROM transactions WHERE tx = ?`, id).Scan(&client)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET state = ? WHERE tx = ?`, string(state), id); err != nil {
		return err
	}
	return s.auditLocked(ctx, "dispute_state_changed", client, id, string(state))
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// AuditEntry is one journal row. Append-only.
type AuditEntry struct {
	ID     string
	At     time.Time
	Action string
	Client engine.ClientID
	Tx     engine.TxID
	Detail string
}

func (s *Store) auditLocked(ctx context.Context, action string, client engine.ClientID, tx engine.TxID, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, at, action, client, tx, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), time.Now().UTC().Format(time.RFC3339Nano), action, client, tx, detail)
	return err
}

// AuditTrail returns the journal entries for one transaction id, oldest
// first.
func (s *Store) AuditTrail(ctx context.Context, id engine.TxID) ([]AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, action, client, tx, detail FROM audit_log WHERE tx = ? ORDER BY at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e  AuditEntry
			at string
		)
		if err := rows.Scan(&e.ID, &at, &e.Action, &e.Client, &e.Tx, &e.Detail); err != nil {
			return nil, err
		}
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
