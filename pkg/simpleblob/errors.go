package simpleblob

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrObjectNotFound indicates the identifier is not in the index
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectExists indicates an index entry with the same id is already live
	ErrObjectExists = errors.New("object already exists")

	// ErrBlobNotFound indicates the blob store has nothing under the storage name
	ErrBlobNotFound = errors.New("blob not found")

	// ErrBlobExists indicates the blob store already holds the storage name
	ErrBlobExists = errors.New("blob already exists")

	// ErrInvalidStorageName indicates a storage name that cannot be persisted safely
	ErrInvalidStorageName = errors.New("invalid storage name")

	// ErrPayloadTooLarge indicates an upload exceeded the configured limit
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrIdentifierExhausted indicates no free identifier was found after retrying
	ErrIdentifierExhausted = errors.New("could not allocate a unique identifier")
)

// ObjectError represents an error related to object operations
type ObjectError struct {
	ID  string
	Op  string
	Err error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("object operation %s failed for object %s: %v", e.Op, e.ID, e.Err)
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

// StorageError represents a failure of the durable medium
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the object is unknown to the index
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsStorageError reports whether err originated in a blob store
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
