/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Pre-built record sequences that walk the engine through its interesting
  paths for demos and exploratory testing. Each scenario is a short
  statement applied through the normal processor, so what a demo shows is
  exactly what production processing does.

AVAILABLE SCENARIOS:
  happy-path:       deposits and withdrawals across two clients
  dispute-resolve:  a dispute that gets resolved, funds returned
  chargeback:       a dispute finalized against the client, account locks
  adversarial:      withdrawal-before-deposit, double dispute, wrong client

USAGE VIA API:
  POST /api/scenarios/load
  {"name": "chargeback"}

NOTE:
  Scenarios replay records against the live store. Run them on a fresh
  database in development/demo environments.

SEE ALSO:
  - handlers.go: the transaction/statement handlers these build on
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/payments-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	Description string
	Records     []engine.Record
}

func deposit(client uint16, tx uint32, amount float64) engine.Record {
	return engine.Record{Kind: engine.KindDeposit, Client: engine.ClientID(client), Tx: engine.TxID(tx), Amount: engine.NewAmount(amount)}
}

func withdrawal(client uint16, tx uint32, amount float64) engine.Record {
	return engine.Record{Kind: engine.KindWithdrawal, Client: engine.ClientID(client), Tx: engine.TxID(tx), Amount: engine.NewAmount(amount)}
}

func refer(kind engine.RecordKind, client uint16, tx uint32) engine.Record {
	return engine.Record{Kind: kind, Client: engine.ClientID(client), Tx: engine.TxID(tx)}
}

var scenarios = map[string]scenario{
	"happy-path": {
		Description: "Deposits and withdrawals across two clients",
		Records: []engine.Record{
			deposit(1, 1, 100),
			deposit(2, 2, 50),
			withdrawal(1, 3, 30),
			withdrawal(2, 4, 20),
		},
	},
	"dispute-resolve": {
		Description: "A disputed deposit that resolves, returning held funds",
		Records: []engine.Record{
			deposit(1, 1, 75),
			refer(engine.KindDispute, 1, 1),
			refer(engine.KindResolve, 1, 1),
		},
	},
	"chargeback": {
		Description: "A dispute finalized against the client; the account locks",
		Records: []engine.Record{
			deposit(1, 1, 75),
			refer(engine.KindDispute, 1, 1),
			refer(engine.KindChargeback, 1, 1),
			deposit(1, 2, 10), // rejected: account is locked
		},
	},
	"adversarial": {
		Description: "Withdrawal before deposit, double dispute, wrong client",
		Records: []engine.Record{
			withdrawal(9, 1, 10), // rejected: unknown client
			deposit(1, 2, 20),
			refer(engine.KindDispute, 1, 2),
			refer(engine.KindDispute, 1, 2), // rejected: already disputed
			refer(engine.KindResolve, 2, 2), // rejected: wrong client
		},
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, 0, len(scenarios))
	for name, sc := range scenarios {
		dtos = append(dtos, ScenarioDTO{Name: name, Description: sc.Description, Records: len(sc.Records)})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario replays a scenario's records through the processor and
// returns the same summary shape as a statement upload.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	sc, ok := scenarios[req.Name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown scenario", nil)
		return
	}

	var sum StatementSummaryDTO
	for _, rec := range sc.Records {
		if err := h.Processor.Apply(r.Context(), rec); err != nil {
			if !engine.IsRejection(err) {
				writeError(w, http.StatusInternalServerError, "scenario failed", err)
				return
			}
			sum.Rejected++
			continue
		}
		sum.Applied++
	}
	writeJSON(w, http.StatusOK, sum)
}
