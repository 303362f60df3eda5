package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payments-engine/engine"
	"github.com/warp/payments-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_AccountRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.GetOrCreateAccount(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, st.MutateAccount(ctx, 1, func(a *engine.Account) {
		a.Available = engine.NewAmount(12.3456)
		a.Held = engine.NewAmount(0.0001)
		a.Locked = true
	}))

	acct, found, err := st.Account(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "12.3456", acct.Available.String())
	assert.Equal(t, "0.0001", acct.Held.String())
	assert.True(t, acct.Locked)
}

func TestSQLite_MutateMissingAccount(t *testing.T) {
	st := newTestStore(t)

	err := st.MutateAccount(context.Background(), 9, func(a *engine.Account) {})
	assert.ErrorIs(t, err, engine.ErrAccountNotFound)
}

func TestSQLite_TransactionRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tx := engine.StoredTransaction{
		Tx: 42, Client: 7, Kind: engine.KindWithdrawal,
		Amount: engine.NewAmount(9.5), State: engine.StateNormal,
	}
	require.NoError(t, st.RecordTransaction(ctx, tx))

	got, found, err := st.LookupTransaction(ctx, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, tx.Client, got.Client)
	assert.Equal(t, tx.Kind, got.Kind)
	assert.Equal(t, engine.StateNormal, got.State)
	assert.True(t, got.Amount.Equal(tx.Amount))

	assert.ErrorIs(t, st.RecordTransaction(ctx, tx), engine.ErrDuplicateTransaction)
}

func TestSQLite_SetDisputeState(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RecordTransaction(ctx, engine.StoredTransaction{
		Tx: 1, Client: 1, Kind: engine.KindDeposit,
		Amount: engine.NewAmount(5), State: engine.StateNormal,
	}))

	require.NoError(t, st.SetDisputeState(ctx, 1, engine.StateDisputed))
	tx, _, err := st.LookupTransaction(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, engine.StateDisputed, tx.State)

	assert.ErrorIs(t, st.SetDisputeState(ctx, 99, engine.StateDisputed), engine.ErrTransactionNotFound)
}

func TestSQLite_AuditTrail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RecordTransaction(ctx, engine.StoredTransaction{
		Tx: 1, Client: 1, Kind: engine.KindDeposit,
		Amount: engine.NewAmount(5), State: engine.StateNormal,
	}))
	require.NoError(t, st.SetDisputeState(ctx, 1, engine.StateDisputed))
	require.NoError(t, st.SetDisputeState(ctx, 1, engine.StateChargedBack))

	trail, err := st.AuditTrail(ctx, 1)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, "transaction_recorded", trail[0].Action)
	assert.Equal(t, "dispute_state_changed", trail[1].Action)
	assert.Equal(t, "dispute_state_changed", trail[2].Action)
	for _, e := range trail {
		assert.NotEmpty(t, e.ID)
	}
}

// The processor must behave identically on the SQLite store.
func TestSQLite_FullDisputeLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proc := engine.NewProcessor(st)

	apply := func(rec engine.Record) error { return proc.Apply(ctx, rec) }

	require.NoError(t, apply(engine.Record{Kind: engine.KindDeposit, Client: 1, Tx: 1, Amount: engine.NewAmount(5)}))
	require.NoError(t, apply(engine.Record{Kind: engine.KindDispute, Client: 1, Tx: 1}))

	acct, _, err := st.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "0.0000", acct.Available.String())
	assert.Equal(t, "5.0000", acct.Held.String())

	require.NoError(t, apply(engine.Record{Kind: engine.KindChargeback, Client: 1, Tx: 1}))

	acct, _, err = st.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "0.0000", acct.Available.String())
	assert.Equal(t, "0.0000", acct.Held.String())
	assert.True(t, acct.Locked)

	err = apply(engine.Record{Kind: engine.KindDeposit, Client: 1, Tx: 2, Amount: engine.NewAmount(1)})
	assert.ErrorIs(t, err, engine.ErrAccountLocked)
}
