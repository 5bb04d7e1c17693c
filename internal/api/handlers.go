/**
 * @description
 * This file contains the HTTP handlers for the ledger-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/creditline/ledger-service/internal/app"
	"github.com/creditline/ledger-service/internal/domain"
	"github.com/creditline/ledger-service/internal/store"
)

// LedgerHandlers holds the application service that handlers will use.
type LedgerHandlers struct {
	service *app.Service
}

// NewLedgerHandlers creates a new instance of LedgerHandlers.
func NewLedgerHandlers(service *app.Service) *LedgerHandlers {
	return &LedgerHandlers{service: service}
}

// SubmitTransactionHandler handles POST /accounts/{id}/transactions.
//
// Success is 200 with {limit, balance}. An unknown account is 404 with an
// empty body. Invalid input and limit-exceeded rejections are both 422: the
// request was understood but cannot be processed, and no state changed.
func (h *LedgerHandlers) SubmitTransactionHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(chi.URLParam(r, "id"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var req domain.SubmitTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Covers malformed JSON as well as non-integral or mistyped amounts.
		h.writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	result, err := h.service.SubmitTransaction(r.Context(), accountID, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidAmount),
			errors.Is(err, domain.ErrInvalidKind),
			errors.Is(err, domain.ErrInvalidNote),
			errors.Is(err, domain.ErrLimitExceeded):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, app.ErrRateLimited):
			h.writeError(w, http.StatusTooManyRequests, err.Error())
		default:
			log.Printf("level=error component=api endpoint=submit_transaction request_id=%s account_id=%d err=%v", GetRequestID(r.Context()), accountID, err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// StatementHandler handles GET /accounts/{id}/statement.
func (h *LedgerHandlers) StatementHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(chi.URLParam(r, "id"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	statement, err := h.service.Statement(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		log.Printf("level=error component=api endpoint=statement request_id=%s account_id=%d err=%v", GetRequestID(r.Context()), accountID, err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, statement)
}

// parseAccountID converts the path segment into an account id. A non-numeric
// id can never reference an account, so callers treat it as absent.
func parseAccountID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// writeJSON is a helper for writing JSON responses.
func (h *LedgerHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *LedgerHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
