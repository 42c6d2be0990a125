package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any NotFoundError
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a status update would move an analysis backwards
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InputError is a client mistake: bad upload content, missing prompt, unknown source kind.
// It is reported back as-is and never retried.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// NewInputError creates an InputError with a formatted message
func NewInputError(format string, args ...any) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failure of the external summarization service
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("summarization failed: %v", e.Err)
	}
	return fmt.Sprintf("summarization failed (%s): %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing document or analysis
type NotFoundError struct {
	Kind string // "document", "analysis"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
