/*
dto.go - Request/response shapes for the HTTP API

PURPOSE:
  JSON-facing structs, kept separate from the engine types so the wire
  format can evolve without touching the core. Amounts cross the wire as
  strings to preserve fixed-point semantics.

SEE ALSO:
  - handlers.go: produces/consumes these
  - validation.go: request validation
*/
package api

import (
	"github.com/warp/payments-engine/engine"
)

// TransactionRequest is the body of POST /api/transactions.
// Amount is required for deposit/withdrawal and ignored otherwise;
// that cross-field rule lives in the handler, not in tags.
type TransactionRequest struct {
	Type   string `json:"type" validate:"required,oneof=deposit withdrawal dispute resolve chargeback"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount,omitempty"`
}

// AccountDTO is one account snapshot. Total is derived server-side.
type AccountDTO struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// TransactionDTO is one stored transaction with its dispute state.
type TransactionDTO struct {
	Tx     uint32 `json:"tx"`
	Client uint16 `json:"client"`
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
	State  string `json:"state"`
}

// StatementSummaryDTO reports what happened to an uploaded statement.
type StatementSummaryDTO struct {
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
	Skipped  int `json:"skipped"`
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Records     int    `json:"records"`
}

func accountDTO(a engine.Account) AccountDTO {
	return AccountDTO{
		Client:    uint16(a.Client),
		Available: a.Available.String(),
		Held:      a.Held.String(),
		Total:     a.Total().String(),
		Locked:    a.Locked,
	}
}

func transactionDTO(tx engine.StoredTransaction) TransactionDTO {
	return TransactionDTO{
		Tx:     uint32(tx.Tx),
		Client: uint16(tx.Client),
		Kind:   string(tx.Kind),
		Amount: tx.Amount.String(),
		State:  string(tx.State),
	}
}
