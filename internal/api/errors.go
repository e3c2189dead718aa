package api

import (
	"errors"
	"net/http"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/service"
	"github.com/mwhitlock/paddock-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrSeasonNotFound),
		errors.Is(err, service.ErrRoundNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrRaceAlreadyApplied),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad data: the request referenced data the engine refuses to fold
	case errors.Is(err, domain.ErrDataIntegrity),
		errors.Is(err, domain.ErrRaceOutOfOrder):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrSeasonNotFound):
		return "Season not found"

	case errors.Is(err, service.ErrRoundNotFound):
		return "Round not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, domain.ErrRaceAlreadyApplied):
		return "Race has already been applied"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrRaceOutOfOrder):
		return "Race is out of season order"

	case errors.Is(err, domain.ErrDataIntegrity):
		return "Race data failed integrity checks"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
