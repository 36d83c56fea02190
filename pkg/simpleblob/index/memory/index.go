package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/tendant/simple-blob/pkg/simpleblob"
)

// Index implements simpleblob.Index using in-memory storage. Nothing is
// persisted: the index starts empty and is discarded with the process.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*simpleblob.ObjectMetadata
	order   []string // ids in insertion order
}

// New creates a new in-memory index
func New() *Index {
	return &Index{
		entries: make(map[string]*simpleblob.ObjectMetadata),
	}
}

func (i *Index) Insert(ctx context.Context, metadata *simpleblob.ObjectMetadata) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.entries[metadata.ID]; exists {
		return simpleblob.ErrObjectExists
	}

	// Store a copy to avoid external modifications
	i.entries[metadata.ID] = metadata.Clone()
	i.order = append(i.order, metadata.ID)
	return nil
}

func (i *Index) Get(ctx context.Context, id string) (*simpleblob.ObjectMetadata, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	metadata, exists := i.entries[id]
	if !exists {
		return nil, simpleblob.ErrObjectNotFound
	}
	return metadata.Clone(), nil
}

func (i *Index) List(ctx context.Context) ([]*simpleblob.ObjectMetadata, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result := make([]*simpleblob.ObjectMetadata, 0, len(i.order))
	for _, id := range i.order {
		result = append(result, i.entries[id].Clone())
	}
	return result, nil
}

func (i *Index) Remove(ctx context.Context, id string) (*simpleblob.ObjectMetadata, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	metadata, exists := i.entries[id]
	if !exists {
		return nil, simpleblob.ErrObjectNotFound
	}

	delete(i.entries, id)
	if idx := slices.Index(i.order, id); idx >= 0 {
		i.order = slices.Delete(i.order, idx, idx+1)
	}
	return metadata, nil
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

var _ simpleblob.Index = (*Index)(nil)
