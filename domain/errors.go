package domain

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound indicates that an id does not resolve to an existing task.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports the first input rule a request violated. It is
// always produced before any write occurs.
type ValidationError struct {
	Field string
	Rule  string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Rule)
}

// StorageError wraps the failure of an atomic storage operation. The
// operation is all-or-nothing, so callers treat it as "no change occurred"
// and may safely retry or re-fetch.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }
