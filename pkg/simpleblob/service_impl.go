package simpleblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tendant/simple-blob/pkg/simpleblob/objectkey"
)

// maxKeyAttempts bounds identifier regeneration when a minted id is taken
const maxKeyAttempts = 5

// service implements the Service interface
type service struct {
	index     Index
	store     BlobStore
	storeName string
	generator objectkey.Generator
	eventSink EventSink
	logger    *slog.Logger
	now       func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithIndex sets the metadata index owned by the service
func WithIndex(index Index) Option {
	return func(s *service) {
		s.index = index
	}
}

// WithBlobStore sets the blob storage backend. name is used in errors and logs.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		s.storeName = name
		s.store = store
	}
}

// WithGenerator sets the identifier generator
func WithGenerator(generator objectkey.Generator) Option {
	return func(s *service) {
		s.generator = generator
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the source of upload timestamps
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now: time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.generator == nil {
		s.generator = objectkey.NewRecommendedGenerator()
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*ObjectMetadata, error) {
	if req.Reader == nil {
		return nil, &ObjectError{Op: "upload", Err: errors.New("reader is required")}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	reader := &countingReader{r: req.Reader}

	// staged names a blob that already holds the payload but lost its id to a
	// concurrent upload. Later attempts copy from it instead of the request.
	var staged string

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := s.generator.Generate(req.OriginalName)

		if _, err := s.index.Get(ctx, key.ID); err == nil {
			s.logger.Debug("Identifier already live, regenerating", "id", key.ID, "attempt", attempt)
			continue
		} else if !errors.Is(err, ErrObjectNotFound) {
			s.discard(ctx, staged)
			return nil, &ObjectError{ID: key.ID, Op: "upload", Err: err}
		}

		var src io.Reader = reader
		var stagedReader io.ReadCloser
		if staged != "" {
			rc, err := s.store.Get(ctx, staged)
			if err != nil {
				s.discard(ctx, staged)
				return nil, s.storageError("get", staged, err)
			}
			src, stagedReader = rc, rc
		}

		hasher := xxhash.New()
		info, err := s.store.Put(ctx, key.StorageName, io.TeeReader(src, hasher))
		if stagedReader != nil {
			stagedReader.Close()
		}
		if err != nil {
			// A taken name can only be retried while the payload is replayable
			if errors.Is(err, ErrBlobExists) && (staged != "" || reader.n == 0) {
				s.logger.Debug("Storage name already taken, regenerating", "storage_name", key.StorageName, "attempt", attempt)
				continue
			}
			s.discard(ctx, staged)
			return nil, s.storageError("put", key.StorageName, err)
		}

		metadata := &ObjectMetadata{
			ID:           key.ID,
			OriginalName: req.OriginalName,
			StorageName:  key.StorageName,
			Size:         info.Size,
			ContentType:  contentType,
			UploadedAt:   s.now().UTC(),
			Location:     info.Location,
			Checksum:     fmt.Sprintf("%016x", hasher.Sum64()),
		}

		if err := s.index.Insert(ctx, metadata); err != nil {
			if errors.Is(err, ErrObjectExists) {
				s.logger.Debug("Identifier claimed concurrently, regenerating", "id", key.ID, "attempt", attempt)
				s.discard(ctx, staged)
				staged = key.StorageName
				continue
			}
			// The blob is unreachable without an entry
			s.discard(ctx, key.StorageName)
			s.discard(ctx, staged)
			return nil, &ObjectError{ID: key.ID, Op: "upload", Err: err}
		}
		s.discard(ctx, staged)

		s.logger.Info("Object uploaded",
			"id", metadata.ID,
			"original_name", metadata.OriginalName,
			"size", metadata.Size,
			"content_type", metadata.ContentType,
		)

		if err := s.eventSink.ObjectUploaded(ctx, metadata.Clone()); err != nil {
			s.logger.Warn("Event sink failed", "event", "object_uploaded", "id", metadata.ID, "error", err)
		}

		return metadata.Clone(), nil
	}

	s.discard(ctx, staged)
	return nil, &ObjectError{Op: "upload", Err: ErrIdentifierExhausted}
}

// discard deletes a blob that no index entry references
func (s *service) discard(ctx context.Context, storageName string) {
	if storageName == "" {
		return
	}
	// Cleanup must still run when the request was cancelled
	ctx = context.WithoutCancel(ctx)
	if err := s.store.Delete(ctx, storageName); err != nil && !errors.Is(err, ErrBlobNotFound) {
		s.logger.Warn("Failed to discard unreferenced blob, leaving orphan",
			"storage_name", storageName, "error", err)
	}
}

func (s *service) List(ctx context.Context) ([]*ObjectMetadata, error) {
	return s.index.List(ctx)
}

func (s *service) Retrieve(ctx context.Context, id string) (*ObjectMetadata, io.ReadCloser, error) {
	metadata, err := s.index.Get(ctx, id)
	if err != nil {
		return nil, nil, &ObjectError{ID: id, Op: "retrieve", Err: err}
	}

	// The entry may be removed concurrently between the lookup and the open;
	// that surfaces here as a storage failure rather than as not found.
	reader, err := s.store.Get(ctx, metadata.StorageName)
	if err != nil {
		return nil, nil, s.storageError("get", metadata.StorageName, err)
	}

	return metadata, reader, nil
}

func (s *service) Remove(ctx context.Context, id string) error {
	metadata, err := s.index.Remove(ctx, id)
	if err != nil {
		return &ObjectError{ID: id, Op: "remove", Err: err}
	}

	if err := s.store.Delete(ctx, metadata.StorageName); err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			s.logger.Error("Failed to delete blob, leaving orphan",
				"id", id, "storage_name", metadata.StorageName, "error", err)
			return s.storageError("delete", metadata.StorageName, err)
		}
		s.logger.Warn("Blob already missing on remove", "id", id, "storage_name", metadata.StorageName)
	}

	s.logger.Info("Object removed", "id", id)

	if err := s.eventSink.ObjectRemoved(ctx, metadata); err != nil {
		s.logger.Warn("Event sink failed", "event", "object_removed", "id", id, "error", err)
	}

	return nil
}

func (s *service) Count() int {
	return s.index.Len()
}

// storageError wraps err as a StorageError unless a backend already did
func (s *service) storageError(op, key string, err error) error {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &StorageError{
		Backend: s.storeName,
		Key:     key,
		Op:      op,
		Err:     err,
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
