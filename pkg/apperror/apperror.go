// Package apperror defines the typed error taxonomy shared by services
// and handlers. Services return *Error values wrapping the cause;
// handlers map them onto HTTP status codes with HTTPStatus.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and logging.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"    // malformed or missing input -> 422
	KindNotFound     Kind = "NOT_FOUND"     // id absent or cross-tenant -> 404
	KindConflict     Kind = "CONFLICT"      // unique constraint violation -> 409
	KindReference    Kind = "REFERENCE"     // related entity unresolvable -> 422
	KindUnauthorized Kind = "UNAUTHORIZED"  // bad credentials/token -> 401
	KindBadRequest   Kind = "BAD_REQUEST"   // malformed identifier -> 400
	KindInternal     Kind = "INTERNAL"      // unexpected failure -> 500
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation is shorthand for New(KindValidation, ...).
func Validation(message string) *Error { return New(KindValidation, message) }

// NotFound is shorthand for New(KindNotFound, ...).
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict is shorthand for New(KindConflict, ...).
func Conflict(message string) *Error { return New(KindConflict, message) }

// Reference is shorthand for New(KindReference, ...).
func Reference(message string) *Error { return New(KindReference, message) }

// KindOf returns the kind of err, or "" if err carries no *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus maps an error onto its HTTP status code. Unclassified
// errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindReference:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
