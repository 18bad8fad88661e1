// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind string

const (
	Internal     Kind = "INTERNAL_SERVER_ERROR"
	NotFound     Kind = "NOT_FOUND"
	Forbidden    Kind = "FORBIDDEN"
	Conflict     Kind = "CONFLICT"
	BadRequest   Kind = "BAD_REQUEST"
	Unauthorized Kind = "UNAUTHORIZED"
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Error is a caller-facing failure. Message is safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error   { return New(NotFound, format, args...) }
func Forbiddenf(format string, args ...any) *Error  { return New(Forbidden, format, args...) }
func Conflictf(format string, args ...any) *Error   { return New(Conflict, format, args...) }
func BadRequestf(format string, args ...any) *Error { return New(BadRequest, format, args...) }

// Wrap marks err as an internal failure with a generic message.
func Wrap(err error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

// KindOf returns the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
