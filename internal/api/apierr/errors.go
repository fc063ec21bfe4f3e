package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/scorepad/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeInvalidPosition       = "INVALID_POSITION"
	CodeGameNotFound          = "GAME_NOT_FOUND"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeActiveSessionNotFound = "ACTIVE_SESSION_NOT_FOUND"
	CodeSessionNotStarted     = "SESSION_NOT_STARTED"
	CodeSessionFinished       = "SESSION_FINISHED"
	CodeInvalidFormat         = "INVALID_FORMAT"
	CodeImportNotConfirmed    = "IMPORT_NOT_CONFIRMED"
	CodeStorageFailure        = "STORAGE_FAILURE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, err.Error()}}
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, err.Error()}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrActiveSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeActiveSessionNotFound, "No active session with that ID"}}
	case errors.Is(err, model.ErrSessionNotStarted):
		return &httpError{http.StatusConflict, APIError{CodeSessionNotStarted, "Session has not started"}}
	case errors.Is(err, model.ErrSessionFinished):
		return &httpError{http.StatusConflict, APIError{CodeSessionFinished, "Session is already finished"}}
	case errors.Is(err, model.ErrInvalidFormat):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidFormat, "Invalid backup file format"}}
	case errors.Is(err, model.ErrImportDeclined):
		return &httpError{http.StatusConflict, APIError{CodeImportNotConfirmed, "Import replaces existing data; repeat with confirm=true"}}
	case errors.Is(err, model.ErrStorageFailure):
		return &httpError{http.StatusInsufficientStorage, APIError{CodeStorageFailure, "Unable to save data"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
