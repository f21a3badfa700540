package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-crm/meridian/internal/shared"
)

// ErrDuplicate indicates a uniqueness conflict at the storage layer.
var ErrDuplicate = errors.New("duplicate entry")

// RespondError maps domain errors to HTTP responses using RFC7807.
// Validation failures name the offending field, lifecycle failures name the
// attempted and current state; both come through the error message.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case shared.IsValidation(err):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case shared.IsInvalidState(err):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case shared.IsConsistency(err):
		Problem(w, http.StatusUnprocessableEntity, "Inconsistent Record", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
