package shared

import (
	"errors"
	"net/http"

	"github.com/meridian-erp/meridian-ledger/internal/platform/httpx"
)

// RespondError maps ledger sentinel errors to RFC7807 problem responses.
// Unknown errors fall through to the generic mapper.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyReversed), errors.Is(err, ErrSourceConflict),
		errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrAccountInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrPeriodLocked):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Period Locked", err.Error())
	case errors.Is(err, ErrUnbalanced), errors.Is(err, ErrTooFewLines), errors.Is(err, ErrZeroTotal),
		errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrSystemAccount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
