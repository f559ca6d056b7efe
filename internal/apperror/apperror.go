// Package apperror defines the domain errors shared by the service, repository
// and handler layers. Handlers map the sentinel errors to HTTP responses with
// errors.Is, so the lower layers never need to know about status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrUpstream   = errors.New("upstream error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Upstream reports a non-success response from an external service.
// The resolver swallows these; JSON handlers map them to 502 Bad Gateway.
func Upstream(service string, status int) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf("%s responded with status %d", service, status),
	}
}
