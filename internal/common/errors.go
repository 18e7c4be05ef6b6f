// Package common defines shared constants and sentinel errors used across
// client and server layers of imagekeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")
	ErrUpstream       = errors.New("upstream error")

	// Registration / verification errors.
	ErrNoPendingRequest = errors.New("no pending request")
	ErrOTPExpired       = errors.New("otp expired")
	ErrInvalidOTP       = errors.New("invalid otp")

	// Login / profile errors.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrPasswordMismatch   = errors.New("passwords do not match")

	// Token errors.
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenBadSignature = errors.New("token signature invalid")
)

// ValidationError describes a single rejected input field.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError wraps ErrAlreadyExists with a user-facing reason.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }

// NewConflictError returns a ConflictError carrying reason.
func NewConflictError(reason string) error {
	return &ConflictError{Reason: reason}
}
