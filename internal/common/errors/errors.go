// internal/common/errors/errors.go

// Package errors provides standardized error handling for the metasearch
// pipeline: record-level errors that are counted and skipped, and
// configuration errors that abort the fusion call.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Record-level errors: the offending record is dropped, the run continues.
	ErrCodeInvalidURL ErrorCode = "INVALID_URL"

	// Caller misconfiguration: fatal to the fusion call, never defaulted.
	ErrCodeUnknownFusionMethod    ErrorCode = "UNKNOWN_FUSION_METHOD"
	ErrCodeInvalidFusionParameter ErrorCode = "INVALID_FUSION_PARAMETER"
	ErrCodeEmptyQuery             ErrorCode = "EMPTY_QUERY"

	// Provider fetch errors: the provider contributes an empty list, the
	// run continues with the remaining providers.
	ErrCodeProviderRequestFailed   ErrorCode = "PROVIDER_REQUEST_FAILED"
	ErrCodeProviderTimeout         ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderResponseInvalid ErrorCode = "PROVIDER_RESPONSE_INVALID"

	// Backend connectivity (internal-index providers).
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"

	// Provider registry errors.
	ErrCodeRegistryInvalid ErrorCode = "REGISTRY_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidURLError creates a record-level error for a URL that cannot be
// parsed at all. The record carrying it is skipped, not the run.
func NewInvalidURLError(rawURL string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidURL,
		Message:   "Result URL cannot be parsed",
		Details:   fmt.Sprintf("url: %q, error: %v", rawURL, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownFusionMethodError creates a fatal configuration error.
func NewUnknownFusionMethodError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownFusionMethod,
		Message:   "Unknown fusion method",
		Details:   fmt.Sprintf("method: %q", method),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFusionParameterError creates a fatal configuration error.
func NewInvalidFusionParameterError(name string, value interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFusionParameter,
		Message:   "Invalid fusion parameter",
		Details:   fmt.Sprintf("%s: %v", name, value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyQueryError creates a fatal configuration error.
func NewEmptyQueryError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuery,
		Message:   "Search query must not be empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderRequestFailedError creates a retryable provider fetch error.
func NewProviderRequestFailedError(providerID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderRequestFailed,
		Message:   "Provider request failed",
		Details:   fmt.Sprintf("provider: %s, error: %v", providerID, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a provider timeout error. Per design the
// provider returns an empty list instead of aborting the run, so no retry.
func NewProviderTimeoutError(providerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   "Provider call exceeded its timeout",
		Details:   fmt.Sprintf("provider: %s", providerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderResponseInvalidError creates a non-retryable decode error.
func NewProviderResponseInvalidError(providerID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderResponseInvalid,
		Message:   "Provider returned an undecodable response",
		Details:   fmt.Sprintf("provider: %s, error: %v", providerID, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(providerID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Backend query execution error",
		Details:   fmt.Sprintf("provider: %s, error: %s", providerID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryInvalidError creates a fatal registry validation error.
func NewRegistryInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInvalid,
		Message:   "Provider registry failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderRequestFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed:
		return 3 // Retryable technical errors

	default:
		return 0 // Configuration and record errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsConfigurationError reports whether the code indicates caller
// misconfiguration, which aborts the fusion call instead of being skipped.
func IsConfigurationError(code ErrorCode) bool {
	switch code {
	case ErrCodeUnknownFusionMethod, ErrCodeInvalidFusionParameter,
		ErrCodeEmptyQuery, ErrCodeRegistryInvalid:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case IsConfigurationError(code):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "BACKEND"
	case strings.Contains(codeStr, "URL"):
		return "RECORD"
	default:
		return "OTHER"
	}
}
