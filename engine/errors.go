/*
errors.go - Centralized error taxonomy for the engine

PURPOSE:
  All rejection reasons in one place for consistency and discoverability.
  Every error here is a normal, expected outcome of processing a record;
  none of them aborts the run. Callers log the rejection and move on.

ERROR CATEGORIES:
  1. Record validation - bad amounts, duplicate ids
  2. Account state - unknown client, locked account, insufficient funds
  3. Dispute lifecycle - missing reference, illegal transition, wrong client

USAGE:
  if errors.Is(err, engine.ErrAccountLocked) { ... }

  Structured variants carry context and unwrap to the sentinels, so both
  errors.Is and errors.As work.

SEE ALSO:
  - processor.go: the only producer of these errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned for a deposit or withdrawal whose amount
	// is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrDuplicateTransaction is returned when a deposit/withdrawal reuses
	// a transaction id already stored this run.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrUnknownClient is returned for a withdrawal naming a client that has
	// no account. Withdrawals never create accounts.
	ErrUnknownClient = errors.New("unknown client for withdrawal")

	// ErrInsufficientFunds is returned when a withdrawal or dispute would
	// push available funds below zero.
	ErrInsufficientFunds = errors.New("insufficient available funds")

	// ErrAccountLocked is returned for deposits/withdrawals against an
	// account frozen by a prior chargeback.
	ErrAccountLocked = errors.New("account is locked")

	// ErrTransactionNotFound is returned when a dispute/resolve/chargeback
	// references a transaction id that was never stored.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidDisputeState is returned for any illegal lifecycle step:
	// double disputes, resolving an undisputed transaction, charging back a
	// resolved one, and so on.
	ErrInvalidDisputeState = errors.New("invalid dispute state transition")

	// ErrClientMismatch is returned when a dispute/resolve/chargeback names
	// a different client than the transaction it references.
	ErrClientMismatch = errors.New("client id mismatch")

	// ErrAccountNotFound is a storage-level error: a mutation targeted an
	// account that does not exist. The processor never triggers it on a
	// well-formed store.
	ErrAccountNotFound = errors.New("account not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError reports how short an account was.
type InsufficientFundsError struct {
	Client    ClientID
	Available Amount
	Requested Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for client %d: available %s, requested %s",
		e.Client, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// ClientMismatchError reports a dispute-family record naming the wrong client.
type ClientMismatchError struct {
	Tx     TxID
	Owner  ClientID
	Caller ClientID
}

func (e *ClientMismatchError) Error() string {
	return fmt.Sprintf("transaction %d belongs to client %d, not %d", e.Tx, e.Owner, e.Caller)
}

func (e *ClientMismatchError) Unwrap() error {
	return ErrClientMismatch
}

// DisputeStateError reports an illegal lifecycle step on a stored transaction.
type DisputeStateError struct {
	Tx        TxID
	From      DisputeState
	Attempted DisputeState
}

func (e *DisputeStateError) Error() string {
	return fmt.Sprintf("transaction %d: illegal transition %s -> %s", e.Tx, e.From, e.Attempted)
}

func (e *DisputeStateError) Unwrap() error {
	return ErrInvalidDisputeState
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRejection returns true for any per-record rejection from the taxonomy.
// These are local to one record; processing always continues.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrUnknownClient) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAccountLocked) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrInvalidDisputeState) ||
		errors.Is(err, ErrClientMismatch)
}

// IsNotFound returns true if the error indicates a missing account or
// transaction.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrUnknownClient)
}
