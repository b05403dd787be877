package rotation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no record matches the id for the owner.
	ErrNotFound = errors.New("crop rotation record not found")
	// ErrConflict is returned when a write lost a race with another writer,
	// or when the owner already registered the same fieldId.
	ErrConflict = errors.New("crop rotation record was modified concurrently")
	// ErrDuplicateField is a conflict on the (userId, fieldId) pair.
	ErrDuplicateField = fmt.Errorf("%w: field already registered", ErrConflict)
)

// ValidationError reports missing or malformed input. Nothing was written.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Fields, "; ")
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
