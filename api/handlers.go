/*
handlers.go - HTTP handlers for the payments engine

PURPOSE:
  Exposes the engine over REST. Handlers parse and validate input, call
  the processor or store, and serialize the result. No business rules
  live here.

ENDPOINTS:
  POST   /api/transactions        Apply a single transaction record
  GET    /api/transactions/{tx}   Stored transaction + dispute state
  GET    /api/accounts            All account snapshots
  GET    /api/accounts/{client}   One account snapshot
  POST   /api/statements          Upload a CSV statement, process it all
  GET    /api/report              Final report as CSV
  GET    /api/scenarios           List demo scenarios
  POST   /api/scenarios/load      Run a demo scenario through the engine

ERROR HANDLING:
  Per-record rejections map to HTTP statuses:
  - 400: invalid amount, client mismatch, illegal dispute transition
  - 404: unknown client/transaction
  - 409: duplicate tx id, locked account, insufficient funds
  Rejections are ordinary outcomes; they never take the server down.

SEE ALSO:
  - dto.go: wire shapes
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/payments-engine/engine"
	"github.com/warp/payments-engine/ingest"
	"github.com/warp/payments-engine/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     engine.Store
	Processor *engine.Processor
	Logger    *zap.SugaredLogger

	validator *requestValidator
}

// NewHandler creates a handler around store. The processor shares the
// store; logger may be nil.
func NewHandler(store engine.Store, logger *zap.SugaredLogger) *Handler {
	proc := engine.NewProcessor(store)
	proc.Logger = logger
	return &Handler{
		Store:     store,
		Processor: proc,
		Logger:    logger,
		validator: newRequestValidator(),
	}
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// SubmitTransaction applies one record and returns the owning account's
// snapshot after the mutation.
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if details := h.validator.Check(req); details != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: details})
		return
	}

	kind := engine.RecordKind(req.Type)
	rec := engine.Record{
		Kind:   kind,
		Client: engine.ClientID(req.Client),
		Tx:     engine.TxID(req.Tx),
	}
	if kind.HasAmount() {
		amount, err := engine.ParseAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "amount is not a valid decimal", nil)
			return
		}
		rec.Amount = amount
	}

	if err := h.Processor.Apply(r.Context(), rec); err != nil {
		writeError(w, statusForError(err), err.Error(), err)
		return
	}

	acct, _, err := h.Store.Account(r.Context(), rec.Client)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load account", err)
		return
	}
	writeJSON(w, http.StatusOK, accountDTO(acct))
}

// GetTransaction returns a stored deposit/withdrawal with its dispute state.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "tx"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id", nil)
		return
	}

	tx, found, err := h.Store.LookupTransaction(r.Context(), engine.TxID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up transaction", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "transaction not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, transactionDTO(tx))
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns every account snapshot, ordered by client id.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.Accounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = accountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns a single account snapshot.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "client"), 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id", nil)
		return
	}

	acct, found, err := h.Store.Account(r.Context(), engine.ClientID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load account", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, accountDTO(acct))
}

// =============================================================================
// STATEMENT AND REPORT HANDLERS
// =============================================================================

// UploadStatement processes a whole CSV statement from the request body
// and returns ingestion counts. Per-record rejections and malformed rows
// do not fail the upload.
func (h *Handler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	reader := ingest.NewReader(r.Body)
	sum, err := h.Processor.Run(r.Context(), reader)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read statement", err)
		return
	}

	writeJSON(w, http.StatusOK, StatementSummaryDTO{
		Applied:  sum.Applied,
		Rejected: sum.Rejected,
		Skipped:  reader.Skipped(),
	})
}

// GetReport streams the final account report as CSV.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	if err := report.Write(r.Context(), w, h.Store); err != nil && h.Logger != nil {
		h.Logger.Errorw("report write failed", "error", err)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// statusForError maps a processor rejection to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrTransactionNotFound),
		errors.Is(err, engine.ErrUnknownClient),
		errors.Is(err, engine.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrDuplicateTransaction),
		errors.Is(err, engine.ErrAccountLocked),
		errors.Is(err, engine.ErrInsufficientFunds):
		return http.StatusConflict
	case engine.IsRejection(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil && err.Error() != msg {
		resp.Details = map[string]string{"cause": err.Error()}
	}
	writeJSON(w, status, resp)
}
