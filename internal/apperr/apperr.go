// Package apperr defines the closed set of error kinds every public
// operation in this service is allowed to fail with. Each error carries a
// stable machine-readable code and a human message; internal causes are
// never exposed to callers, only logged.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindInvalidTransition
	KindInvalidSchedule
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInvalidSchedule:
		return "invalid_schedule"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal_error"
	}
}

// Error is the only error type surfaced by the service layer.
type Error struct {
	Kind  Kind
	Code  string // stable machine code, defaults to Kind.String()
	msg   string
	cause error
}

func New(kind Kind, code, format string, args ...any) *Error {
	if code == "" {
		code = kind.String()
	}
	return &Error{Kind: kind, Code: code, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Kind == KindInternal {
		// Never leak the underlying cause to callers.
		return "internal error"
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Detail returns the full message including any wrapped cause. Intended for
// server-side logging only.
func (e *Error) Detail() string {
	if e.cause != nil {
		if e.msg != "" {
			return e.msg + ": " + e.cause.Error()
		}
		return e.cause.Error()
	}
	return e.msg
}

// HTTPStatus maps the error kind to the status code the HTTP layer responds
// with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidTransition, KindInvalidSchedule:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Convenience constructors, one per kind.

func Validation(format string, args ...any) *Error {
	return New(KindValidation, "", format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return New(KindInvalidTransition, "", format, args...)
}

func InvalidSchedule(format string, args ...any) *Error {
	return New(KindInvalidSchedule, "", format, args...)
}

func NotFound(resource string, id any) *Error {
	return New(KindNotFound, "", "%s %v not found", resource, id)
}

func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, "", format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, "", format, args...)
}

// Internal wraps an infrastructure failure. The cause is retained for
// logging but never rendered by Error().
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: KindInternal.String(), msg: "internal error", cause: cause}
}

// From classifies an arbitrary error. Already-classified errors pass through
// unchanged; anything else becomes KindInternal so no unclassified error
// reaches a caller.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
