/*
Package ingest decodes raw CSV rows into typed transaction records.

PURPOSE:
  The record decoder at the front of the pipeline. It yields a lazy,
  finite, non-restartable sequence of engine.Record values and silently
  skips anything malformed: unknown types, unparsable ids or amounts, and
  deposit/withdrawal rows missing their amount. A bad row is never fatal.

INPUT FORMAT:
  type, client, tx, amount
  deposit,    1, 1, 1.0
  withdrawal, 1, 4, 1.5
  dispute,    1, 1,

  Cells may carry surrounding whitespace; the amount column is absent or
  empty for dispute, resolve and chargeback rows. Amounts are rounded to
  four fractional digits at parse time.

SKIP SEMANTICS:
  Malformed rows do not exist from the processor's point of view. They are
  counted (Skipped) so callers can surface ingestion quality, but they are
  never surfaced as errors on the record stream.

SEE ALSO:
  - engine/processor.go: consumes the records produced here
  - report/writer.go: the matching output side
*/
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/warp/payments-engine/engine"
)

// Reader decodes transaction records from CSV. It implements
// engine.RecordSource.
type Reader struct {
	csv     *csv.Reader
	header  bool
	skipped int
}

// NewReader wraps r. The first row is treated as the header and discarded.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // dispute rows legitimately omit the amount cell
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// Next returns the next valid record, skipping malformed rows. It returns
// io.EOF once the input is exhausted. Any other error is an I/O failure on
// the underlying source.
func (r *Reader) Next() (engine.Record, error) {
	for {
		row, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return engine.Record{}, io.EOF
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// Structurally broken row: skip it, keep reading.
				r.skipped++
				continue
			}
			return engine.Record{}, err
		}

		if !r.header {
			r.header = true
			continue
		}

		rec, ok := decodeRow(row)
		if !ok {
			r.skipped++
			continue
		}
		return rec, nil
	}
}

// Skipped reports how many malformed rows were dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// decodeRow turns one CSV row into a record. The bool result is the skip
// signal: false means the row is malformed.
func decodeRow(row []string) (engine.Record, bool) {
	if len(row) < 3 {
		return engine.Record{}, false
	}

	kind, ok := engine.ParseRecordKind(strings.TrimSpace(row[0]))
	if !ok {
		return engine.Record{}, false
	}

	client, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 16)
	if err != nil {
		return engine.Record{}, false
	}
	tx, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 32)
	if err != nil {
		return engine.Record{}, false
	}

	rec := engine.Record{
		Kind:   kind,
		Client: engine.ClientID(client),
		Tx:     engine.TxID(tx),
	}

	if kind.HasAmount() {
		if len(row) < 4 {
			return engine.Record{}, false
		}
		amount, err := engine.ParseAmount(strings.TrimSpace(row[3]))
		if err != nil {
			return engine.Record{}, false
		}
		rec.Amount = amount
	}

	return rec, true
}
