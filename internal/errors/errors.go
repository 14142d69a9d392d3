package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ValidationError indicates an unknown category path, unknown gender or
	// a facet selection that does not match the catalog
	ValidationError ErrorCode = "VALIDATION_ERROR"
	// ConfigurationError indicates a missing credential or invalid setting
	ConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	// ProviderError indicates a failed call to an external data provider
	ProviderError ErrorCode = "PROVIDER_ERROR"
	// CacheError indicates a read or write failure on the result cache
	CacheError ErrorCode = "CACHE_ERROR"
	// NotFound indicates a catalog path segment does not exist
	NotFound ErrorCode = "NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// SetEnv suggests exporting an environment variable
	SetEnv FixActionType = "set-env"
	// EditConfig suggests editing the configuration file
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Variable    string        `json:"variable,omitempty"`
	Description string        `json:"description,omitempty"`
}

// FacetError represents an analysis error with code, message, and suggestions
type FacetError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a FacetError without an underlying cause.
func New(code ErrorCode, message string) *FacetError {
	return &FacetError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with fmt-style formatting.
func Newf(code ErrorCode, format string, args ...interface{}) *FacetError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a FacetError around cause.
func Wrap(code ErrorCode, message string, cause error) *FacetError {
	e := New(code, message)
	e.cause = cause
	return e
}

// Error implements the error interface
func (e *FacetError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *FacetError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *FacetError) WithDetails(details interface{}) *FacetError {
	e.Details = details
	return e
}

// Code returns the ErrorCode of the first FacetError in err's chain,
// or the empty code when there is none.
func Code(err error) ErrorCode {
	var fe *FacetError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// AsFacetError returns the FacetError in err's chain. Errors without one
// are wrapped as INTERNAL_ERROR.
func AsFacetError(err error) *FacetError {
	var fe *FacetError
	if stderrors.As(err, &fe) {
		return fe
	}
	return Wrap(InternalError, "unexpected error", err)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && Code(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigurationError: {
		{
			Type:        SetEnv,
			Variable:    "SEMRUSH_API_KEY",
			Description: "Export the SEMrush API key before running an analysis",
		},
		{
			Type:        EditConfig,
			Description: "Check .facettes/config.yaml against the defaults",
		},
	},
	ValidationError: {
		{
			Type:        RunCommand,
			Command:     "facettes catalog list",
			Description: "List known category paths and genders",
		},
	},
	CacheError: {
		{
			Type:        RunCommand,
			Command:     "facettes cache purge",
			Description: "Clear the result cache",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
