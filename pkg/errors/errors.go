// Package errors defines the failure taxonomy shared by the ingestion and
// analytics paths and maps each failure to the HTTP status class reported to
// callers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMalformedInput       = errors.New("malformed input")
	ErrEmptyInput           = errors.New("empty input")
	ErrTooManyRows          = errors.New("too many rows")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConflict             = errors.New("duplicate key")
	ErrSchema               = errors.New("schema mismatch")
	ErrStorage              = errors.New("storage failure")
	ErrAuth                 = errors.New("store authentication failed")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrMalformedInput), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrTooManyRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing text for err. Errors outside the
// taxonomy are reported generically so driver internals never leak.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}

// Kind returns a short label for err, used as a metrics dimension.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrTooManyRows):
		return "too_many_rows"
	case errors.Is(err, ErrUnsupportedMediaType):
		return "unsupported_media_type"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrAuth):
		return "auth"
	default:
		return "storage"
	}
}

var sentinels = []error{
	ErrMalformedInput,
	ErrEmptyInput,
	ErrTooManyRows,
	ErrUnsupportedMediaType,
	ErrInvalidInput,
	ErrConflict,
	ErrSchema,
	ErrStorage,
	ErrAuth,
}
