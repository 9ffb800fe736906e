package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrNotFound    = errors.New("not found")
	ErrTooLarge    = errors.New("request too large")
)

// Error carries a client-facing message and classifies as its sentinel.
type Error struct {
	Sentinel error
	Msg      string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Sentinel }

// Validation returns a 400-class error whose text is shown to the caller.
func Validation(msg string) error {
	return &Error{Sentinel: ErrValidation, Msg: msg}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) error {
	return &Error{Sentinel: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the text a client should see for err. Internal failures
// collapse to fallback so error details do not leak.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrValidation):
		return "validation"

	case errors.Is(err, ErrRateLimited):
		return "rate_limited"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrTooLarge):
		return "too_large"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
