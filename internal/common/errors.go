// Package common defines shared constants and sentinel errors used across
// repository, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// Error attaches a client-facing message to one of the sentinel kinds above.
// It unwraps to both Kind and Cause, so errors.Is matches either of them.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewError returns an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError is NewError with an underlying cause that is kept for logs.
func WrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Invalid(message string) *Error      { return NewError(ErrorValidation, message) }
func NotFound(message string) *Error     { return NewError(ErrorNotFound, message) }
func Conflict(message string) *Error     { return NewError(ErrorAlreadyExists, message) }
func Unauthorized(message string) *Error { return NewError(ErrorUnauthorized, message) }

// Internal hides cause behind a generic message.
func Internal(cause error) *Error {
	return WrapError(ErrorInternal, "Something went wrong", cause)
}

// Message returns the client-facing message carried by err, or fallback when
// err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
