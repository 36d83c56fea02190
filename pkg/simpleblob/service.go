package simpleblob

import (
	"context"
	"io"
)

// Service defines the main interface for the simple-blob library
type Service interface {
	// Upload streams the request body into the blob store and registers the
	// object in the index. No index entry is created unless the blob write
	// succeeded.
	Upload(ctx context.Context, req UploadRequest) (*ObjectMetadata, error)

	// List returns every live object in insertion order
	List(ctx context.Context) ([]*ObjectMetadata, error)

	// Retrieve resolves id through the index and opens its blob. The caller
	// must close the returned reader.
	Retrieve(ctx context.Context, id string) (*ObjectMetadata, io.ReadCloser, error)

	// Remove deletes the index entry first and then the blob
	Remove(ctx context.Context, id string) error

	// Count returns the number of live objects
	Count() int
}
