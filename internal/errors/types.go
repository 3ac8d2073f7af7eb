package errors

import (
	"errors"
	"fmt"
)

// TransientError represents an error that can be retried.
type TransientError struct {
	Err     error
	Message string // operator-friendly message
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as retry-able with an operator-friendly message.
func NewTransientError(err error, message string) *TransientError {
	return &TransientError{Err: err, Message: message}
}

// PermanentError represents an error that should not be retried.
type PermanentError struct {
	Err     error
	Message string
}

func (e *PermanentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError wraps an error as non-retry-able with an operator-friendly message.
func NewPermanentError(err error, message string) *PermanentError {
	return &PermanentError{Err: err, Message: message}
}

// IsTransient reports whether an error has been marked retry-able.
//
// Unlike service-side retry policies that sniff network and HTTP failures,
// this tool retries nothing by default: callers wrap the one error class
// they want retried (rate limiting) in a TransientError explicitly.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

// Describe converts an error to an operator-friendly actionable message,
// preferring the message attached when the error was classified.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var transientErr *TransientError
	if errors.As(err, &transientErr) && transientErr.Message != "" {
		return transientErr.Message
	}

	var permanentErr *PermanentError
	if errors.As(err, &permanentErr) && permanentErr.Message != "" {
		return permanentErr.Message
	}

	return err.Error()
}
