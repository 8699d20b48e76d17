package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"tabung/internal/core"
	"tabung/internal/log"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message         string `json:"message"`
	Type            string `json:"type"`
	ConfirmRequired bool   `json:"confirm_required,omitempty"`
}

// errorStatus maps a ledger error onto a status code and a stable type string.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, core.ErrReservedNameConflict):
		return http.StatusConflict, "reserved_name"
	case errors.Is(err, core.ErrReservedCategory):
		return http.StatusBadRequest, "reserved_category"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrAlreadyPaid):
		return http.StatusConflict, "already_paid"
	case errors.Is(err, core.ErrNameConflict):
		return http.StatusConflict, "name_conflict"
	case errors.Is(err, core.ErrCategoryInUse):
		return http.StatusConflict, "category_in_use"
	case errors.Is(err, core.ErrLinkedExpense):
		return http.StatusConflict, "linked_expense"
	case errors.Is(err, core.ErrBudgetExceeded):
		return http.StatusConflict, "budget_exceeded"
	case errors.Is(err, core.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Message: msg, Type: typ}})
}

// writeLedgerError reports err to the client. Store failures are logged and
// their detail withheld.
func writeLedgerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, typ := errorStatus(err)
	msg := err.Error()
	if status >= 500 {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger operation failed",
			log.FieldOperation, op, log.FieldError, err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Message:         msg,
		Type:            typ,
		ConfirmRequired: errors.Is(err, core.ErrBudgetExceeded),
	}})
}
