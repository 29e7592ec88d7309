package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/rundown-core/internal/automation"
	"github.com/nerrad567/rundown-core/internal/rundown"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeUnavailable  = "session_unavailable"
	ErrCodeNotSupported = "not_supported"
	ErrCodeRateLimited  = "rate_limited"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeNotSupported writes a 503 for an endpoint whose backing store is
// not configured.
func writeNotSupported(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeNotSupported, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps a domain error onto a status code. A missing
// session is a blocking state, not a transient failure, and is reported as
// "cannot start session".
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, automation.ErrSessionUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "cannot start session: "+err.Error())
	case errors.Is(err, rundown.ErrShowNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, rundown.ErrInvalidShow),
		errors.Is(err, rundown.ErrEmptyRundown),
		errors.Is(err, automation.ErrInvalidControl),
		errors.Is(err, automation.ErrUnknownControl):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
