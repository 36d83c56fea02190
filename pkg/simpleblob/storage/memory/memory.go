package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/tendant/simple-blob/pkg/simpleblob"
)

const locationPrefix = "memory://"

// Backend is an in-memory implementation of the simpleblob.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

// Put buffers the whole payload before publishing it, so readers never see a
// partial blob.
func (b *Backend) Put(ctx context.Context, storageName string, reader io.Reader) (*simpleblob.BlobInfo, error) {
	if storageName == "" {
		return nil, simpleblob.ErrInvalidStorageName
	}

	b.mu.RLock()
	_, exists := b.objects[storageName]
	b.mu.RUnlock()
	if exists {
		return nil, simpleblob.ErrBlobExists
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &simpleblob.StorageError{Backend: "memory", Key: storageName, Op: "put", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &simpleblob.StorageError{Backend: "memory", Key: storageName, Op: "put", Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[storageName]; exists {
		return nil, simpleblob.ErrBlobExists
	}
	b.objects[storageName] = data

	return &simpleblob.BlobInfo{
		Size:     int64(len(data)),
		Location: locationPrefix + storageName,
	}, nil
}

func (b *Backend) Get(ctx context.Context, storageName string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[storageName]
	if !exists {
		return nil, simpleblob.ErrBlobNotFound
	}

	// Stored slices are never mutated, so sharing them with readers is safe
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Backend) Delete(ctx context.Context, storageName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[storageName]; !exists {
		return simpleblob.ErrBlobNotFound
	}
	delete(b.objects, storageName)
	return nil
}

// Len returns the number of stored blobs
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

var _ simpleblob.BlobStore = (*Backend)(nil)
