/*
store.go - Storage interface for accounts and stored transactions

PURPOSE:
  Defines the interface between the processor and the ledger's backing
  storage. The store is pure storage: it owns the two authoritative maps
  (client -> account, tx id -> stored transaction) and performs NO
  business validation. The processor is solely responsible for invariant
  preservation.

CONTRACT:
  - GetOrCreateAccount never fails; it inserts a zeroed account on first use
  - RecordTransaction rejects a duplicate tx id with ErrDuplicateTransaction
  - MutateAccount applies a balance delta supplied by the processor
  - SetDisputeState persists a lifecycle step the processor already vetted

IMPLEMENTATIONS:
  - engine/store: in-memory maps (the CLI path, and tests)
  - store/sqlite: SQLite-backed, used by the server mode

SEE ALSO:
  - processor.go: the only caller that mutates through this interface
*/
package engine

import "context"

// Store owns account and transaction state for one run.
// It validates nothing beyond storage-level integrity (duplicate ids,
// missing rows); every business rule lives in the Processor.
type Store interface {
	// GetOrCreateAccount returns the client's account, inserting a zeroed
	// one if this is the first time the client is seen. Never fails on the
	// in-memory store.
	GetOrCreateAccount(ctx context.Context, client ClientID) (Account, error)

	// Account returns the client's account without creating it.
	Account(ctx context.Context, client ClientID) (Account, bool, error)

	// Accounts returns every account, ordered by client id.
	Accounts(ctx context.Context) ([]Account, error)

	// MutateAccount applies fn to the stored account. Returns
	// ErrAccountNotFound if the account does not exist.
	MutateAccount(ctx context.Context, client ClientID, fn func(*Account)) error

	// RecordTransaction stores a new deposit/withdrawal. Returns
	// ErrDuplicateTransaction if the tx id already exists.
	RecordTransaction(ctx context.Context, tx StoredTransaction) error

	// LookupTransaction returns the stored transaction for id, if any.
	LookupTransaction(ctx context.Context, id TxID) (StoredTransaction, bool, error)

	// SetDisputeState persists a new lifecycle state for a stored
	// transaction. Returns ErrTransactionNotFound if the id is unknown.
	SetDisputeState(ctx context.Context, id TxID, state DisputeState) error
}
