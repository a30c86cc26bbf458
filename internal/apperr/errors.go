// Package apperr classifies failures so the HTTP layer can map them to
// status codes without knowing which repository or service produced them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the error category
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Field   string // set for validation errors
	Message string
	Status  int // overrides the default status for the kind when non-zero
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the error should be reported with
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show to API callers. Internal errors
// never expose their cause.
func (e *Error) PublicMessage() string {
	if e.Kind == KindInternal {
		return "Internal server error"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Validation reports a missing or malformed field
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced record absent in scope
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a state conflict such as a sequence collision
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// DuplicateBill is the conflict raised when a bill already exists for the
// party and date. It is reported as 400 to match the billing contract.
func DuplicateBill(partyNo, date string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("bill already exists for %s on %s", partyNo, date),
		Status:  http.StatusBadRequest,
	}
}

// Internal wraps an unexpected failure. The operation names what was being
// attempted and ends up in the log, not in the response.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// KindOf returns the kind of err, treating unclassified errors as internal
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// EnsureInternal passes classified errors through and wraps everything else
// as internal. Used at source boundaries where only internal failures may
// propagate.
func EnsureInternal(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Internal(op, err)
}
