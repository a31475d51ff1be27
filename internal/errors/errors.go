// Package errors provides the structured error type for searchd.
// Codes are stable identifiers used in logs and retry decisions; the HTTP
// boundary maps every error to a generic response and never exposes them.
package errors

import (
	"fmt"
)

// SearchError is the structured error type for searchd.
type SearchError struct {
	// Code is the unique error code (e.g., "ERR_301_INDEX_WRITE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Query, Auth).
	Category Category

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SearchError.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new SearchError with the given code and message.
// Category and retryable flag are derived from the code.
func New(code string, message string, cause error) *SearchError {
	return &SearchError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SearchError from an existing error.
// Returns nil if err is nil.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IndexWriteError wraps a storage failure on the index write path.
func IndexWriteError(err error) *SearchError {
	return Wrap(ErrCodeIndexWrite, err)
}

// IndexDeleteError wraps a storage failure on the index delete path.
func IndexDeleteError(err error) *SearchError {
	return Wrap(ErrCodeIndexDelete, err)
}

// QueryError wraps a storage failure during ranked search.
func QueryError(err error) *SearchError {
	return Wrap(ErrCodeQueryFailed, err)
}
