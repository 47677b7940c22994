package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrInvalidInput indicates invalid input data (client-caused)
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence indicates the record store could not durably save a record
	ErrPersistence = errors.New("persistence failure")
)

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// PersistenceError wraps a storage-layer fault so callers can match ErrPersistence
// while keeping the underlying cause in the chain.
func PersistenceError(operation string, err error) error {
	return fmt.Errorf("%s: %w: %w", operation, ErrPersistence, err)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// publicMessager is implemented by errors that carry a message safe to show clients.
type publicMessager interface {
	PublicMessage() string
}

type publicError struct {
	message string
	err     error
}

func (e *publicError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *publicError) Unwrap() error {
	return e.err
}

func (e *publicError) PublicMessage() string {
	return e.message
}

// WithPublicMessage attaches a client-safe message to err. The original error is
// still reachable through errors.Is / errors.As.
func WithPublicMessage(err error, message string) error {
	return &publicError{message: message, err: err}
}

// PublicMessage returns the outermost client-safe message in err's chain, or
// fallback when there is none. Internal details never leak through this path.
func PublicMessage(err error, fallback string) string {
	var pm publicMessager
	if errors.As(err, &pm) {
		if msg := pm.PublicMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
