package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Connector and widget errors
	ErrCodeConnectorInvalid ErrorCode = "CONNECTOR_INVALID"
	ErrCodeUnknownWidget    ErrorCode = "UNKNOWN_WIDGET"

	// Query errors
	ErrCodeParameterNotFound ErrorCode = "PARAMETER_NOT_FOUND"
	ErrCodeSearchFailed      ErrorCode = "SEARCH_FAILED"

	// State errors
	ErrCodeMissingResults ErrorCode = "MISSING_RESULTS"
	ErrCodeStaleReference ErrorCode = "STALE_REFERENCE"
	ErrCodeStateLocked    ErrorCode = "STATE_LOCKED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// SearchError represents a structured error with context
type SearchError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *SearchError) WithDetail(key string, value interface{}) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *SearchError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new SearchError
func New(code ErrorCode, message string) *SearchError {
	return &SearchError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a SearchError
func Wrap(err error, code ErrorCode, message string) *SearchError {
	return &SearchError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific SearchError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	searchErr, ok := err.(*SearchError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return searchErr.Code
}
