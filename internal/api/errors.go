package api

import (
	"errors"
	"net/http"

	"github.com/mwelles/retention-api/internal/service/review"
	"github.com/mwelles/retention-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, review.ErrConceptNotFound),
		errors.Is(err, store.ErrConceptNotFound),
		errors.Is(err, store.ErrMemoryRecordNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, review.ErrConceptExists),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrInvalidPerformance),
		errors.Is(err, review.ErrInvalidPostponeDays),
		errors.Is(err, review.ErrEmptyContent),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrConceptNotFound),
		errors.Is(err, store.ErrConceptNotFound):
		return "Concept not found"

	case errors.Is(err, store.ErrMemoryRecordNotFound):
		return "Memory record not found"

	case errors.Is(err, review.ErrConceptExists),
		errors.Is(err, store.ErrDuplicate):
		return "Concept is already tracked"

	case errors.Is(err, review.ErrInvalidPerformance):
		return "Performance score must be between 0 and 3"

	case errors.Is(err, review.ErrInvalidPostponeDays):
		return "Postpone days must be at least 1"

	case errors.Is(err, review.ErrEmptyContent):
		return "Concept content cannot be empty"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
