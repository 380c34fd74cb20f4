// Package common defines sentinel errors shared by the catalog services and
// HTTP handlers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Service-level errors.
	ErrValidation   = errors.New("validation error")
	ErrInvalidState = errors.New("invalid state")
	ErrInternal     = errors.New("internal error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidToken = errors.New("invalid token")
)

// UserError carries a message meant to be shown to the user next to the
// sentinel that classifies it.
type UserError struct {
	Kind    error
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is lets errors.Is match on the classifying sentinel.
func (e *UserError) Is(target error) bool {
	return e.Kind == target
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError builds a UserError of the given kind.
func NewUserError(kind error, message string, cause error) *UserError {
	return &UserError{Kind: kind, Message: message, Err: cause}
}

// UserMessage returns the user-facing message carried by err, or fallback
// when err carries none.
func UserMessage(err error, fallback string) string {
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return fallback
}
