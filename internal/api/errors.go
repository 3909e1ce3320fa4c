package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/babyscan/babyscan/internal/anthropometry"
	"github.com/babyscan/babyscan/internal/measure"
	"github.com/babyscan/babyscan/internal/types"
)

// badRequestError marks client input problems found by the handlers.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &badRequestError{err: fmt.Errorf(format, args...)}
}

func isBadRequest(err error) bool {
	var br *badRequestError
	return errors.As(err, &br)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case isBadRequest(err),
		errors.Is(err, anthropometry.ErrInvalidDate),
		errors.Is(err, measure.ErrInvalidScale):
		return http.StatusBadRequest
	case errors.Is(err, measure.ErrDetectionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, measure.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away; nginx's 499 has no net/http constant
		return 499
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes err as JSON. Internal errors are logged and their text hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
