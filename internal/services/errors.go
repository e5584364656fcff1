package services

import (
	"errors"

	"winelist/internal/repositories"
)

var (
	ErrInvalidDocument  = errors.New("invalid document")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrDocumentNotFound = repositories.ErrDocumentNotFound
	ErrSnapshotNotFound = repositories.ErrSnapshotNotFound
	ErrCorruptDocument  = errors.New("stored document is not valid JSON")
	ErrEmptyQuery       = errors.New("empty search query")
)

// ValidationError carries the message shown to the client for a rejected document.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

func invalid(message string) error {
	return &ValidationError{Message: message}
}
