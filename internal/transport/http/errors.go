package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veloway/freightline/internal/domain"
)

const (
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidQuantity      = "invalid_quantity"
	codeInvalidAmount        = "invalid_amount"
	codeInvalidCapacity      = "invalid_capacity"
	codeInvalidUnitLoad      = "invalid_unit_load"
	codeInvalidTimeWindow    = "invalid_time_window"
	codeNameRequired         = "name_required"
	codeCityRequired         = "city_required"
	codeDestinationRequired  = "destination_required"
	codeOrderLinesRequired   = "order_lines_required"
	codeStoreNotFound        = "store_not_found"
	codeProductNotFound      = "product_not_found"
	codeOrderNotFound        = "order_not_found"
	codeResourceNotFound     = "resource_not_found"
	codeOrderCancelled       = "order_cancelled"
	codeOrderNotSchedulable  = "order_not_schedulable"
	codeNoFeasibleResource   = "no_feasible_resource"
	codeRetriesExhausted     = "retries_exhausted"
	codeInsufficientCapacity = "insufficient_capacity"
	codeConflict             = "conflict"
	codeInvariantViolation   = "invariant_violation"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps engine and validation failures onto HTTP statuses.
// NoFeasibleResource and ExhaustedRetries are retryable-later conditions,
// not server faults; an invariant violation is always a 500 because it
// means some writer bypassed the ledger.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrInvalidUnitLoad):
		writeError(w, http.StatusBadRequest, codeInvalidUnitLoad, err.Error())
	case errors.Is(err, domain.ErrInvalidTimeWindow):
		writeError(w, http.StatusBadRequest, codeInvalidTimeWindow, err.Error())
	case errors.Is(err, domain.ErrNameRequired):
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case errors.Is(err, domain.ErrCityRequired):
		writeError(w, http.StatusBadRequest, codeCityRequired, err.Error())
	case errors.Is(err, domain.ErrDestinationRequired):
		writeError(w, http.StatusBadRequest, codeDestinationRequired, err.Error())
	case errors.Is(err, domain.ErrOrderLinesRequired):
		writeError(w, http.StatusBadRequest, codeOrderLinesRequired, err.Error())
	case errors.Is(err, domain.ErrStoreNotFound):
		writeError(w, http.StatusNotFound, codeStoreNotFound, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrResourceNotFound):
		writeError(w, http.StatusNotFound, codeResourceNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderCancelled):
		writeError(w, http.StatusConflict, codeOrderCancelled, err.Error())
	case errors.Is(err, domain.ErrOrderNotSchedulable):
		writeError(w, http.StatusConflict, codeOrderNotSchedulable, err.Error())
	case errors.Is(err, domain.ErrNoFeasibleResource):
		writeError(w, http.StatusConflict, codeNoFeasibleResource, err.Error())
	case errors.Is(err, domain.ErrExhaustedRetries):
		writeError(w, http.StatusConflict, codeRetriesExhausted, err.Error())
	case errors.Is(err, domain.ErrInsufficientCapacity):
		writeError(w, http.StatusConflict, codeInsufficientCapacity, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrInvariantViolation):
		writeError(w, http.StatusInternalServerError, codeInvariantViolation, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
