package ingest_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payments-engine/engine"
	"github.com/warp/payments-engine/ingest"
)

func readAll(t *testing.T, input string) ([]engine.Record, *ingest.Reader) {
	t.Helper()
	r := ingest.NewReader(strings.NewReader(input))
	var records []engine.Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, r
		}
		require.NoError(t, err)
		records = append(records, rec)
	}
}

func TestReader_DecodesAllKinds(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,1.0
withdrawal,1,2,0.5
dispute,1,1,
resolve,1,1,
chargeback,1,1,
`
	records, r := readAll(t, input)
	require.Len(t, records, 5)
	assert.Zero(t, r.Skipped())

	assert.Equal(t, engine.KindDeposit, records[0].Kind)
	assert.Equal(t, engine.ClientID(1), records[0].Client)
	assert.Equal(t, engine.TxID(1), records[0].Tx)
	assert.Equal(t, "1.0000", records[0].Amount.String())

	assert.Equal(t, engine.KindWithdrawal, records[1].Kind)
	assert.Equal(t, "0.5000", records[1].Amount.String())

	assert.Equal(t, engine.KindDispute, records[2].Kind)
	assert.Equal(t, engine.KindResolve, records[3].Kind)
	assert.Equal(t, engine.KindChargeback, records[4].Kind)
}

func TestReader_TrimsWhitespace(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit,   1,  1,   2.5\n" +
		"dispute,   1,  1\n"

	records, r := readAll(t, input)
	require.Len(t, records, 2)
	assert.Zero(t, r.Skipped())
	assert.Equal(t, "2.5000", records[0].Amount.String())
	assert.Equal(t, engine.TxID(1), records[1].Tx)
}

func TestReader_SkipsMalformedRows(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,1.0
teleport,1,2,1.0
deposit,notaclient,3,1.0
deposit,1,notanid,1.0
deposit,1,4,notanamount
deposit,1,5
withdrawal,1,6,0.5
`
	records, r := readAll(t, input)
	require.Len(t, records, 2)
	assert.Equal(t, 5, r.Skipped())
	assert.Equal(t, engine.TxID(1), records[0].Tx)
	assert.Equal(t, engine.TxID(6), records[1].Tx)
}

func TestReader_NegativeAmountPassesThrough(t *testing.T) {
	// Sign is a business rule, not a decode rule: the processor rejects
	// it with a typed error so it can be surfaced, not silently dropped.
	input := "type,client,tx,amount\ndeposit,1,1,-3.0\n"

	records, r := readAll(t, input)
	require.Len(t, records, 1)
	assert.Zero(t, r.Skipped())
	assert.True(t, records[0].Amount.IsNegative())
}

func TestReader_ClientAndTxBounds(t *testing.T) {
	// Client ids are 16-bit, tx ids 32-bit; out-of-range rows are malformed.
	input := `type,client,tx,amount
deposit,65536,1,1.0
deposit,1,4294967296,1.0
deposit,65535,4294967295,1.0
`
	records, r := readAll(t, input)
	require.Len(t, records, 1)
	assert.Equal(t, 2, r.Skipped())
	assert.Equal(t, engine.ClientID(65535), records[0].Client)
	assert.Equal(t, engine.TxID(4294967295), records[0].Tx)
}

func TestReader_EmptyInput(t *testing.T) {
	records, r := readAll(t, "")
	assert.Empty(t, records)
	assert.Zero(t, r.Skipped())
}

func TestReader_HeaderOnly(t *testing.T) {
	records, _ := readAll(t, "type,client,tx,amount\n")
	assert.Empty(t, records)
}

func TestReader_RoundsAmountsAtParseTime(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1.23456789\n"

	records, _ := readAll(t, input)
	require.Len(t, records, 1)
	assert.Equal(t, "1.2346", records[0].Amount.String())
}
