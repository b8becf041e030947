package handler

import (
	"errors"
	"net/http"

	"rentalportal/internal/status"
)

// httpStatusFor maps domain errors to HTTP codes. Conflicts (illegal
// transition, lost optimistic-lock race) map to 409 so clients know to
// refresh and retry; everything unrecognized is a 500.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, status.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, status.ErrUnknownStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, status.ErrInvalidAction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, status.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, status.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
