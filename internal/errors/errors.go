// Package errors provides standardized domain errors with codes for the
// shelfstats API.
//
// The two analytics conditions NO_DATA and INSUFFICIENT_COLUMNS are expected
// outcomes rather than failures: handlers translate them into explicit
// signals in the response payload instead of HTTP error statuses.
//
// Usage:
//
//	// In services - return typed errors
//	if len(view) == 0 {
//	    return errors.NoData("no rows match the current selection")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNoData) {
//	    // degrade to a "no data" payload
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeValidation          Code = "VALIDATION"
	CodeNoData              Code = "NO_DATA"
	CodeInsufficientColumns Code = "INSUFFICIENT_COLUMNS"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
//
// NO_DATA and INSUFFICIENT_COLUMNS map to 200: they describe a valid state
// of the current selection, and are only surfaced through this mapping when
// a handler forgets to translate them.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNoData, CodeInsufficientColumns:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation          = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNoData              = &Error{Code: CodeNoData, Message: "no data for current selection"}
	ErrInsufficientColumns = &Error{Code: CodeInsufficientColumns, Message: "not enough numeric columns"}
	ErrInternal            = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NoData creates a no data error.
func NoData(msg string) *Error {
	return &Error{Code: CodeNoData, Message: msg}
}

// InsufficientColumns creates an insufficient columns error.
func InsufficientColumns(msg string) *Error {
	return &Error{Code: CodeInsufficientColumns, Message: msg}
}

// InsufficientColumnsf creates an insufficient columns error with formatted message.
func InsufficientColumnsf(format string, args ...any) *Error {
	return &Error{Code: CodeInsufficientColumns, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}
