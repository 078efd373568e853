// Package common defines shared constants and the error taxonomy used across
// the client layers. Callers should use errors.Is / errors.As to match them.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad input (file type/size, missing fields). Never persisted.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a mutation targets an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks a durable write that failed. In-memory state stays
	// authoritative for the session.
	ErrStorage = errors.New("storage error")

	// ErrRemote marks a failed call to a remote collaborator.
	ErrRemote = errors.New("remote error")

	// Transport-level remote errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError reports which field was rejected and why.
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

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// RemoteError is the typed failure result of a remote operation. Message is
// safe to show to the user.
type RemoteError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// Remote wraps err into a RemoteError for op. A nil err yields nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	msg := "request failed"
	switch {
	case errors.Is(err, ErrUnavailable):
		msg = "backend not available, please check if the server is running"
	case errors.Is(err, ErrUnauthorized):
		msg = "invalid credentials or session expired"
	}
	return &RemoteError{Op: op, Message: msg, Err: err}
}
