package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record exists under a key.
var ErrNotFound = errors.New("short link not found")

// BackendError wraps a failure reported by the key-value backend.
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// DeserializationError reports a stored payload that is not a valid ShortLink.
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to decode link %q: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}
