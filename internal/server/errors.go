package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/store"
)

// ErrTabNotFound indicates no tracked tab matched the target id.
type ErrTabNotFound struct {
	TargetID string
}

func (e *ErrTabNotFound) Error() string {
	return fmt.Sprintf("tab not found: %s", e.TargetID)
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var tabErr *ErrTabNotFound
	var valErr *ErrValidation
	switch {
	case errors.As(err, &tabErr):
		return http.StatusNotFound
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.Is(err, messaging.ErrNoReceiver):
		return http.StatusBadGateway
	case errors.Is(err, messaging.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
