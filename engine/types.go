/*
Package engine is the core transaction-processing engine.

PURPOSE:
  This package contains the data model and business rules for turning an
  ordered stream of transaction records (deposit, withdrawal, dispute,
  resolve, chargeback) into per-client account state. Everything else in
  the repo (CSV ingestion, reporting, HTTP API) is a thin collaborator
  around this package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: one decoded input row, the unit of processing
  - StoredTransaction: a deposit/withdrawal retained for dispute handling
  - DisputeState: the lifecycle of a stored transaction
  - Account: per-client balances (available, held) plus the locked flag

DESIGN PRINCIPLES:
  1. Precision: amounts use decimal arithmetic, never floats
  2. Sequential: records are applied one at a time, in input order
  3. All-or-nothing: a rejected record leaves the ledger untouched
  4. Explicit errors: every rejection is an expected outcome, not a panic

SEE ALSO:
  - processor.go: the state machine applying records
  - store.go: the storage interface the processor drives
  - errors.go: the rejection taxonomy
*/
package engine

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies a client account. Width matches the input format.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Unique across a whole run.
type TxID uint32

// =============================================================================
// RECORD - One decoded input row
// =============================================================================

type RecordKind string

const (
	KindDeposit    RecordKind = "deposit"
	KindWithdrawal RecordKind = "withdrawal"
	KindDispute    RecordKind = "dispute"
	KindResolve    RecordKind = "resolve"
	KindChargeback RecordKind = "chargeback"
)

// ParseRecordKind maps an input cell to a RecordKind.
// Unknown kinds are a decode-time concern; they never reach the processor.
func ParseRecordKind(s string) (RecordKind, bool) {
	switch RecordKind(s) {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return RecordKind(s), true
	}
	return "", false
}

// HasAmount reports whether this kind carries its own amount column.
// Dispute, resolve and chargeback reference a prior transaction instead.
func (k RecordKind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Record is a single decoded transaction record. Amount is only meaningful
// when Kind.HasAmount(); the decoder guarantees it is present and positive
// for those kinds.
type Record struct {
	Kind   RecordKind
	Client ClientID
	Tx     TxID
	Amount Amount
}

// =============================================================================
// DISPUTE STATE - Lifecycle of a stored transaction
// =============================================================================

// DisputeState tracks where a stored transaction sits in the dispute
// lifecycle. The only legal transitions are:
//
//	Normal   -> Disputed     (dispute)
//	Disputed -> Resolved     (resolve)
//	Disputed -> ChargedBack  (chargeback)
//
// Resolved and ChargedBack are terminal. A state never regresses.
type DisputeState string

const (
	StateNormal      DisputeState = "normal"
	StateDisputed    DisputeState = "disputed"
	StateResolved    DisputeState = "resolved"
	StateChargedBack DisputeState = "charged_back"
)

// CanTransition reports whether moving from s to next is a legal step.
func (s DisputeState) CanTransition(next DisputeState) bool {
	switch s {
	case StateNormal:
		return next == StateDisputed
	case StateDisputed:
		return next == StateResolved || next == StateChargedBack
	}
	return false
}

// =============================================================================
// STORED TRANSACTION - Historical deposit/withdrawal
// =============================================================================

// StoredTransaction is a deposit or withdrawal retained in the ledger so
// later dispute/resolve/chargeback records can reference it by TxID.
type StoredTransaction struct {
	Tx     TxID
	Client ClientID
	Kind   RecordKind
	Amount Amount
	State  DisputeState
}

// =============================================================================
// ACCOUNT - Per-client balances
// =============================================================================

// Account holds one client's balances. Total is derived, never stored:
// it is always Available + Held, which keeps the identity from drifting.
type Account struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Locked    bool
}

// Total returns the derived total balance.
func (a Account) Total() Amount {
	return a.Available.Add(a.Held)
}

func NewAccount(client ClientID) Account {
	return Account{Client: client}
}
