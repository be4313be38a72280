package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindSignatureMismatch Kind = "signature_mismatch"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal"
)

// Error is the error type returned across service boundaries.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func Validation(msg string) *Error   { return New(KindValidation, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }

// Conflict marks a lost race on an inventory unit. Clients may retry with a
// different range or unit.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Retryable: true}
}

// Terminal is a conflict with the booking's own state; retrying will not help.
func Terminal(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func SignatureMismatch() *Error {
	return New(KindSignatureMismatch, "payment signature verification failed")
}

func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

var ErrSlotUnavailable = Conflict("slot no longer available")

// KindOf reports the Kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindSignatureMismatch:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
