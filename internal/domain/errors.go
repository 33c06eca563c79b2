package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")

	// ErrEmptyDeck is returned when a session is started on a deck with
	// zero candidate cards. Surfaced to the caller, never retried.
	ErrEmptyDeck = errors.New("empty deck")

	// ErrSessionClosed is returned on any transition against a terminal
	// session. Replaying an answer against a closed session fails, it
	// does not silently succeed.
	ErrSessionClosed = errors.New("session closed")

	// ErrOutOfOrder is returned when an answer names a card other than
	// the one at the session cursor.
	ErrOutOfOrder = errors.New("answer out of order")

	// ErrBusy is returned when a second answer arrives while one is
	// already in flight for the same session.
	ErrBusy = errors.New("session busy")

	// ErrNotReady is returned when a summary is requested for a session
	// that is still active.
	ErrNotReady = errors.New("session not ready")

	// ErrStorageUnavailable marks transient storage failures. Callers may
	// retry with backoff; the core never retries internally.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
