package store

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a data operation runs before Init has
// completed. This is a programmer error, always fatal to the call.
//
// Check with errors.Is:
//
//	if errors.Is(err, store.ErrNotInitialized) {
//	    // Open + Init before touching collections
//	}
var ErrNotInitialized = errors.New("store not initialized")

// StorageError wraps an underlying persistence failure with the operation
// that hit it. The store never retries; retries, if any, belong to the
// sync engine.
type StorageError struct {
	Op  string // short operation description, e.g. "upsert inspection insp-1"
	Err error  // underlying cause
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr wraps err as a *StorageError for the given operation.
func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
