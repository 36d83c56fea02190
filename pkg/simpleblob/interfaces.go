package simpleblob

import (
	"context"
	"io"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Put streams reader to durable storage under storageName and returns the
	// number of bytes written together with the location of the blob. A
	// partially written blob is never visible under storageName. If the name
	// is taken Put returns ErrBlobExists and leaves the existing blob alone.
	Put(ctx context.Context, storageName string, reader io.Reader) (*BlobInfo, error)

	// Get opens the blob for sequential reading, or returns ErrBlobNotFound
	Get(ctx context.Context, storageName string) (io.ReadCloser, error)

	// Delete removes the blob, or returns ErrBlobNotFound
	Delete(ctx context.Context, storageName string) error
}

// Index is the authoritative mapping from object id to metadata
type Index interface {
	// Insert adds a new entry. It returns ErrObjectExists when an entry with
	// the same id is live.
	Insert(ctx context.Context, metadata *ObjectMetadata) error

	// Get returns a copy of the entry or ErrObjectNotFound
	Get(ctx context.Context, id string) (*ObjectMetadata, error)

	// List returns a snapshot of all entries in insertion order
	List(ctx context.Context) ([]*ObjectMetadata, error)

	// Remove deletes the entry and returns it, or returns ErrObjectNotFound.
	// Of several concurrent removes for one id, exactly one gets the entry.
	Remove(ctx context.Context, id string) (*ObjectMetadata, error)

	// Len returns the number of live entries
	Len() int
}

// EventSink receives lifecycle notifications. Errors are logged by the
// service and never fail the operation that fired the event.
type EventSink interface {
	// ObjectUploaded is fired after the index entry is created
	ObjectUploaded(ctx context.Context, metadata *ObjectMetadata) error

	// ObjectRemoved is fired after the index entry is removed
	ObjectRemoved(ctx context.Context, metadata *ObjectMetadata) error
}
