package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrTypeDiscoveryUnavailable marks a metadata query the store cannot
	// serve (missing privilege or capability). It is a soft condition: the
	// discoverer degrades to heuristic suggestions instead of failing.
	ErrTypeDiscoveryUnavailable ErrorType = "discovery_unavailable"
	ErrTypeUnknownTable         ErrorType = "unknown_table"
	ErrTypeUnknownColumn        ErrorType = "unknown_column"
	ErrTypeConnection           ErrorType = "connection"
	ErrTypeTimeout              ErrorType = "timeout"
	ErrTypeValidation           ErrorType = "validation"
	ErrTypeConfig               ErrorType = "config"
	ErrTypeInternal             ErrorType = "internal"
)

// Error represents a structured error with type and optional suggestions
type Error struct {
	Type        ErrorType
	Message     string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion for resolving the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// New creates a new structured error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new structured error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType returns the error type if it's a structured error
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// IsRetryable reports whether the error is transient. Retry policy itself is
// the caller's responsibility; the engine performs no internal retries.
func IsRetryable(err error) bool {
	switch GetType(err) {
	case ErrTypeConnection, ErrTypeTimeout:
		return true
	default:
		return false
	}
}

// NewUnknownTable creates an unknown-table error with discovery suggestions
func NewUnknownTable(table string) *Error {
	return Newf(ErrTypeUnknownTable, "table not found: %s", table).
		WithSuggestion("Run the tables command to list discovered tables").
		WithSuggestion("Check the table name for typos")
}

// NewUnknownColumn creates an unknown-column error scoped to one table
func NewUnknownColumn(table, column string) *Error {
	return Newf(ErrTypeUnknownColumn, "column %s not found in table %s", column, table).
		WithSuggestion("Run the describe command to list the table's columns")
}
