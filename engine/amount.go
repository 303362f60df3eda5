/*
amount.go - Fixed-point money amounts

PURPOSE:
  Wraps decimal arithmetic behind a small value type so balances never
  touch native floating point. Input amounts are rounded to four
  fractional digits at parse time; output is rendered with exactly four.

PRECISION:
  Four fractional digits, half-away-from-zero rounding at the boundary.
  All internal arithmetic is exact decimal addition/subtraction, so the
  only rounding that ever happens is at parse time.

SEE ALSO:
  - ingest/reader.go: parses amounts from CSV cells
  - report/writer.go: renders amounts into the final report
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// Places is the fixed number of fractional digits carried by every Amount.
const Places = 4

// Amount is a fixed-point money value. The zero value is zero.
type Amount struct {
	Value decimal.Decimal
}

// ParseAmount parses a decimal string and rounds it to Places fractional
// digits. The empty string and unparsable input are errors; sign is not
// validated here (the processor owns the positivity rule).
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d.Round(Places)}, nil
}

// NewAmount builds an Amount from a float, rounded to Places digits.
// Intended for tests and fixtures, not for the ingest path.
func NewAmount(f float64) Amount {
	return Amount{Value: decimal.NewFromFloat(f).Round(Places)}
}

func (a Amount) Add(b Amount) Amount { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount { return Amount{Value: a.Value.Sub(b.Value)} }

func (a Amount) IsPositive() bool       { return a.Value.IsPositive() }
func (a Amount) IsNegative() bool       { return a.Value.IsNegative() }
func (a Amount) IsZero() bool           { return a.Value.IsZero() }
func (a Amount) LessThan(b Amount) bool { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool    { return a.Value.Equal(b.Value) }

// String renders the amount with exactly Places fractional digits.
// This is the one and only output format for balances.
func (a Amount) String() string {
	return a.Value.StringFixed(Places)
}
