// Package apperror defines the structured error taxonomy surfaced at the
// HTTP boundary: stable machine-readable codes plus human-readable messages.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeValidation   = "validation"
	CodeUpstream     = "upstream_error"
)

// Error is a typed application error with a stable code.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error // wrapped cause, not exposed to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so sentinel comparisons work across instances.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Unauthorized returns an error for requests lacking an authenticated session.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

// Forbidden returns an error for authenticated requests lacking permission.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

// NotFound returns an error for a missing entity.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message, Status: http.StatusNotFound}
}

// Validation returns an error for malformed input rejected before business logic.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

// Upstream wraps a data-store or third-party failure not attributable to the
// caller. These propagate unmodified and are logged centrally.
func Upstream(message string, err error) *Error {
	return &Error{Code: CodeUpstream, Message: message, Status: http.StatusBadGateway, Err: err}
}

// StatusOf returns the HTTP status for err, defaulting to 500 for errors
// outside the taxonomy.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
