/*
processor.go - The transaction state machine

PURPOSE:
  The Processor is the sole authority applying business rules. It consumes
  one decoded record at a time, strictly in input order, and either applies
  it to the Store or rejects it with a typed error from errors.go.

ALL-OR-NOTHING:
  Rules are evaluated in sequence; the first failing rule determines the
  error and the record has no effect on the ledger. Every precondition is
  checked before the first mutation, so a rejection never leaves partial
  state behind.

RULES (per record kind):
  deposit     amount > 0; account not locked; creates the account lazily;
              available += amount; stored as Normal
  withdrawal  amount > 0; account must exist and not be locked;
              available >= amount; available -= amount; stored as Normal
  dispute     referenced tx exists, is Normal, owner matches;
              available -= amount, held += amount; tx becomes Disputed
  resolve     referenced tx exists, is Disputed, owner matches;
              held -= amount, available += amount; tx becomes Resolved
  chargeback  referenced tx exists, is Disputed, owner matches;
              held -= amount; tx becomes ChargedBack; account locks

  A dispute that would drive available funds negative is rejected with
  ErrInsufficientFunds. Held funds for a Disputed transaction always cover
  its amount, so resolve and chargeback never underflow.

SEE ALSO:
  - store.go: the storage the processor drives
  - errors.go: the rejection taxonomy
  - ingest/reader.go: produces the records consumed here
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor applies records to a Store, enforcing all business rules.
// It owns the Store exclusively for the duration of a run.
type Processor struct {
	store Store

	// Logger, when set, records per-record rejections at warn level.
	// Rejections are expected outcomes; they are never fatal.
	Logger *zap.SugaredLogger
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// Apply processes a single record. A nil return means the record was
// applied; any error from the taxonomy means it was rejected with no
// effect on the ledger.
func (p *Processor) Apply(ctx context.Context, rec Record) error {
	switch rec.Kind {
	case KindDeposit:
		return p.deposit(ctx, rec)
	case KindWithdrawal:
		return p.withdrawal(ctx, rec)
	case KindDispute:
		return p.transition(ctx, rec, StateDisputed)
	case KindResolve:
		return p.transition(ctx, rec, StateResolved)
	case KindChargeback:
		return p.transition(ctx, rec, StateChargedBack)
	}
	// Unknown kinds are filtered at decode time; reaching here is a bug.
	return fmt.Errorf("unhandled record kind %q", rec.Kind)
}

// =============================================================================
// DEPOSITS AND WITHDRAWALS
// =============================================================================

func (p *Processor) deposit(ctx context.Context, rec Record) error {
	if !rec.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, found, err := p.store.LookupTransaction(ctx, rec.Tx); err != nil {
		return err
	} else if found {
		return ErrDuplicateTransaction
	}

	// The locked check must come before account creation: a deposit against
	// an existing locked account is rejected, and a rejected deposit for an
	// unseen client must not create the account.
	acct, exists, err := p.store.Account(ctx, rec.Client)
	if err != nil {
		return err
	}
	if exists && acct.Locked {
		return ErrAccountLocked
	}

	if _, err := p.store.GetOrCreateAccount(ctx, rec.Client); err != nil {
		return err
	}
	if err := p.store.MutateAccount(ctx, rec.Client, func(a *Account) {
		a.Available = a.Available.Add(rec.Amount)
	}); err != nil {
		return err
	}
	return p.store.RecordTransaction(ctx, StoredTransaction{
		Tx:     rec.Tx,
		Client: rec.Client,
		Kind:   KindDeposit,
		Amount: rec.Amount,
		State:  StateNormal,
	})
}

func (p *Processor) withdrawal(ctx context.Context, rec Record) error {
	if !rec.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, found, err := p.store.LookupTransaction(ctx, rec.Tx); err != nil {
		return err
	} else if found {
		return ErrDuplicateTransaction
	}

	acct, exists, err := p.store.Account(ctx, rec.Client)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownClient
	}
	if acct.Locked {
		return ErrAccountLocked
	}
	if acct.Available.LessThan(rec.Amount) {
		return &InsufficientFundsError{
			Client:    rec.Client,
			Available: acct.Available,
			Requested: rec.Amount,
		}
	}

	if err := p.store.MutateAccount(ctx, rec.Client, func(a *Account) {
		a.Available = a.Available.Sub(rec.Amount)
	}); err != nil {
		return err
	}
	return p.store.RecordTransaction(ctx, StoredTransaction{
		Tx:     rec.Tx,
		Client: rec.Client,
		Kind:   KindWithdrawal,
		Amount: rec.Amount,
		State:  StateNormal,
	})
}

// =============================================================================
// DISPUTE LIFECYCLE
// =============================================================================

// transition handles dispute, resolve and chargeback, which share their
// precondition sequence: the referenced transaction must exist, must be in
// the right lifecycle state, and must belong to the record's client.
func (p *Processor) transition(ctx context.Context, rec Record, target DisputeState) error {
	tx, found, err := p.store.LookupTransaction(ctx, rec.Tx)
	if err != nil {
		return err
	}
	if !found {
		return ErrTransactionNotFound
	}
	if !tx.State.CanTransition(target) {
		return &DisputeStateError{Tx: tx.Tx, From: tx.State, Attempted: target}
	}
	if tx.Client != rec.Client {
		return &ClientMismatchError{Tx: tx.Tx, Owner: tx.Client, Caller: rec.Client}
	}

	var mutate func(*Account)
	switch target {
	case StateDisputed:
		// Holding more than the account has available would push the
		// available balance negative, so the dispute is rejected instead.
		acct, _, err := p.store.Account(ctx, tx.Client)
		if err != nil {
			return err
		}
		if acct.Available.LessThan(tx.Amount) {
			return &InsufficientFundsError{
				Client:    tx.Client,
				Available: acct.Available,
				Requested: tx.Amount,
			}
		}
		mutate = func(a *Account) {
			a.Available = a.Available.Sub(tx.Amount)
			a.Held = a.Held.Add(tx.Amount)
		}
	case StateResolved:
		mutate = func(a *Account) {
			a.Held = a.Held.Sub(tx.Amount)
			a.Available = a.Available.Add(tx.Amount)
		}
	case StateChargedBack:
		// Held funds are removed for good; the account freezes.
		mutate = func(a *Account) {
			a.Held = a.Held.Sub(tx.Amount)
			a.Locked = true
		}
	}

	if err := p.store.MutateAccount(ctx, tx.Client, mutate); err != nil {
		return err
	}
	return p.store.SetDisputeState(ctx, tx.Tx, target)
}

// =============================================================================
// RUN LOOP
// =============================================================================

// RecordSource is a lazy, finite, non-restartable stream of decoded
// records. Next returns io.EOF when the stream ends. Malformed rows are a
// decode-time concern: sources skip them and never surface them here.
type RecordSource interface {
	Next() (Record, error)
}

// RunSummary counts what happened to the records of one run.
type RunSummary struct {
	Applied  int
	Rejected int
}

// Run drains src through Apply. Per-record rejections are counted (and
// logged when a Logger is set) but never stop the run; only a source
// failure or context cancellation ends it early.
func (p *Processor) Run(ctx context.Context, src RecordSource) (RunSummary, error) {
	var sum RunSummary
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return sum, nil
		}
		if err != nil {
			return sum, err
		}

		if err := p.Apply(ctx, rec); err != nil {
			if !IsRejection(err) {
				return sum, err
			}
			sum.Rejected++
			if p.Logger != nil {
				p.Logger.Warnw("record rejected",
					"kind", rec.Kind,
					"client", rec.Client,
					"tx", rec.Tx,
					"reason", err,
				)
			}
			continue
		}
		sum.Applied++
	}
}
