/*
Package report renders the final account state as CSV.

PURPOSE:
  The output side of the pipeline. Given the final set of accounts, it
  emits one row per client with the fixed header

    client,available,held,total,locked

  Every decimal value carries exactly four fractional digits. Column order
  and header names are part of the output contract. Rows are sorted by
  client id so output is deterministic run to run.

SEE ALSO:
  - engine/store.go: Accounts() supplies the rows
  - ingest/reader.go: the matching input side
*/
package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/warp/payments-engine/engine"
)

// Header is the fixed column contract of the report.
var Header = []string{"client", "available", "held", "total", "locked"}

// Write renders every account in the store to w. The store returns
// accounts ordered by client id, which Write preserves.
func Write(ctx context.Context, w io.Writer, store engine.Store) error {
	accounts, err := store.Accounts(ctx)
	if err != nil {
		return err
	}
	return WriteAccounts(w, accounts)
}

// WriteAccounts renders the given accounts in the order provided.
func WriteAccounts(w io.Writer, accounts []engine.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, a := range accounts {
		row := []string{
			strconv.FormatUint(uint64(a.Client), 10),
			a.Available.String(),
			a.Held.String(),
			a.Total().String(),
			strconv.FormatBool(a.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
