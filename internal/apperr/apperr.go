package apperr

import (
	"errors"
	"net/http"
)

// Error is the application error every domain failure derives from.
// Code doubles as the HTTP status the transport layer answers with.
type Error struct {
	Code    int
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause (set for wrapped internal errors).
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code int, fallback string, message ...string) *Error {
	msg := fallback
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return &Error{Code: code, Message: msg}
}

func BadRequest(message ...string) *Error {
	return newError(http.StatusBadRequest, "Invalid request.", message...)
}

func Unauthorized(message ...string) *Error {
	return newError(http.StatusUnauthorized, "Unauthorized.", message...)
}

func Forbidden(message ...string) *Error {
	return newError(http.StatusForbidden, "Access denied.", message...)
}

func NotFound(message ...string) *Error {
	return newError(http.StatusNotFound, "Record not found.", message...)
}

func Conflict(message ...string) *Error {
	return newError(http.StatusConflict, "Conflict with current state.", message...)
}

func UnprocessableEntity(message ...string) *Error {
	return newError(http.StatusUnprocessableEntity, "Entity cannot be processed.", message...)
}

func TooManyRequests(message ...string) *Error {
	return newError(http.StatusTooManyRequests, "Too many requests.", message...)
}

func Internal(message ...string) *Error {
	return newError(http.StatusInternalServerError, "Internal server error.", message...)
}

// Wrap turns an arbitrary failure into an internal error while keeping
// the cause reachable via Unwrap for diagnostics.
func Wrap(err error) *Error {
	e := Internal()
	e.cause = err
	return e
}

// From classifies err: domain errors pass through unchanged, anything
// else is wrapped as an internal error.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err)
}

// Is reports whether err is a domain error with the given status code.
func Is(err error, code int) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
