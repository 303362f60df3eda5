package report_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payments-engine/engine"
	"github.com/warp/payments-engine/engine/store"
	"github.com/warp/payments-engine/report"
)

func TestWriteAccounts_FixedHeaderAndFourPlaces(t *testing.T) {
	accounts := []engine.Account{
		{Client: 1, Available: engine.NewAmount(1.5), Held: engine.NewAmount(0)},
		{Client: 2, Available: engine.NewAmount(2), Held: engine.NewAmount(3.25), Locked: true},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteAccounts(&buf, accounts))

	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,2.0000,3.2500,5.2500,true\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_RowsSortedByClient(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	proc := engine.NewProcessor(st)

	// Insert in shuffled client order; the report must come out sorted.
	for _, rec := range []engine.Record{
		{Kind: engine.KindDeposit, Client: 7, Tx: 1, Amount: engine.NewAmount(1)},
		{Kind: engine.KindDeposit, Client: 2, Tx: 2, Amount: engine.NewAmount(2)},
		{Kind: engine.KindDeposit, Client: 5, Tx: 3, Amount: engine.NewAmount(3)},
	} {
		require.NoError(t, proc.Apply(ctx, rec))
	}

	var buf bytes.Buffer
	require.NoError(t, report.Write(ctx, &buf, st))

	want := "client,available,held,total,locked\n" +
		"2,2.0000,0.0000,2.0000,false\n" +
		"5,3.0000,0.0000,3.0000,false\n" +
		"7,1.0000,0.0000,1.0000,false\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_EmptyLedgerEmitsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Write(context.Background(), &buf, store.NewMemory()))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}
