package apperror

import (
	"errors"
	"net/http"
)

// Kind is the stable, machine-readable error category exposed to clients.
type Kind string

const (
	KindValidation  Kind = "validation_error"
	KindConflict    Kind = "conflict_error"
	KindForbidden   Kind = "forbidden_error"
	KindNotFound    Kind = "not_found_error"
	KindAuth        Kind = "auth_error"
	KindRateLimited Kind = "rate_limited"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal_error"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, KindConflict, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, KindAuth, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, KindForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, KindRateLimited, message, nil)
}

func Unavailable(message string, err error) *AppError {
	return New(http.StatusServiceUnavailable, KindUnavailable, message, err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, KindInternal, "Internal Server Error", err)
}

// KindOf reports the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
