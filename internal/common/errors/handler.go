// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler writes errors to HTTP responses with standardized bodies.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleRequestError normalizes err, logs it and writes the matching HTTP
// response. Configuration errors map to 400, backend errors to 502, the
// rest to 500.
func (h *ErrorHandler) HandleRequestError(w http.ResponseWriter, err error) {
	stdErr := h.normalizeError(err)
	status := HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"code":     string(stdErr.Code),
		"category": GetErrorCategory(stdErr.Code),
		"status":   status,
		"details":  stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(stdErr.Message, fields)
	} else {
		h.logger.Warn(stdErr.Message, fields)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(stdErr)
}

// normalizeError ensures we always have a StandardError.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to the HTTP status the API surfaces.
func HTTPStatus(code ErrorCode) int {
	switch {
	case IsConfigurationError(code):
		return http.StatusBadRequest
	case code == ErrCodeElasticsearchConnectionFailed,
		code == ErrCodeDatabaseConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
