package errors

import (
	"fmt"
)

// SiftError is the structured error type for filesift.
// It provides rich context for error handling, logging, and user presentation.
type SiftError struct {
	// Code is the unique error code (e.g., "ERR_205_CORRUPT_SNAPSHOT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SiftError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SiftError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SiftError.
func (e *SiftError) Is(target error) bool {
	if t, ok := target.(*SiftError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SiftError) WithDetail(key, value string) *SiftError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *SiftError) WithSuggestion(suggestion string) *SiftError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SiftError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *SiftError {
	return &SiftError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SiftError from an existing error.
// The error's message becomes the SiftError message.
func Wrap(code string, err error) *SiftError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SiftError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// SnapshotError creates a snapshot I/O error.
func SnapshotError(message string, cause error) *SiftError {
	return New(ErrCodeSnapshotWrite, message, cause)
}

// CorruptSnapshotError creates the error that forces a full rebuild.
func CorruptSnapshotError(message string, cause error) *SiftError {
	return New(ErrCodeCorruptSnapshot, message, cause).
		WithSuggestion("the snapshot will be discarded and the index rebuilt from the metadata source")
}

// SourceError creates a metadata-source availability error.
// Source errors are retryable; the prior index state is preserved.
func SourceError(message string, cause error) *SiftError {
	return New(ErrCodeSourceUnavailable, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *SiftError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SiftError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a SiftError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*SiftError); ok {
		return se.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*SiftError); ok {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a SiftError.
// Returns empty string if not a SiftError.
func GetCode(err error) string {
	if se, ok := err.(*SiftError); ok {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a SiftError.
// Returns empty string if not a SiftError.
func GetCategory(err error) Category {
	if se, ok := err.(*SiftError); ok {
		return se.Category
	}
	return ""
}
