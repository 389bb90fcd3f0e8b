package journal

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound is returned by UpdateEntry when no entry exists for the
// target date. Read-style queries never return it; they report absence
// through their boolean result instead.
var ErrEntryNotFound = errors.New("entry not found")

// ValidationError reports malformed caller input. State is never mutated
// when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError reports a failed durable persist. The in-memory collection
// stays consistent with the last successful persist.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
