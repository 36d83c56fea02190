package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tendant/simple-blob/pkg/simpleblob"
	"github.com/tendant/simple-blob/pkg/simpleblob/audit/postgres"
	"github.com/tendant/simple-blob/pkg/simpleblob/index/memory"
	"github.com/tendant/simple-blob/pkg/simpleblob/logging"
	"github.com/tendant/simple-blob/pkg/simpleblob/objectkey"
	fsstorage "github.com/tendant/simple-blob/pkg/simpleblob/storage/fs"
	memorystorage "github.com/tendant/simple-blob/pkg/simpleblob/storage/memory"
	s3storage "github.com/tendant/simple-blob/pkg/simpleblob/storage/s3"
)

// BuildLogger creates the process logger described by the configuration
func (c *ServerConfig) BuildLogger(w io.Writer) (*slog.Logger, error) {
	return logging.New(w, c.LoggingOptions())
}

// BuildStore creates the blob store selected by StorageURL. The returned name
// identifies the backend in errors and logs.
func (c *ServerConfig) BuildStore(ctx context.Context) (string, simpleblob.BlobStore, error) {
	storage, err := ParseStorageURL(c.StorageURL)
	if err != nil {
		return "", nil, err
	}

	switch storage.Type {
	case "memory":
		return "memory", memorystorage.New(), nil

	case "fs":
		store, err := fsstorage.New(fsstorage.Config{BaseDir: storage.BaseDir})
		if err != nil {
			return "", nil, err
		}
		return "fs", store, nil

	case "s3":
		region := storage.Region
		if region == "" {
			region = c.S3.Region
		}
		store, err := s3storage.New(ctx, s3storage.Config{
			Region:                 region,
			Bucket:                 storage.Bucket,
			Prefix:                 storage.Prefix,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               storage.Endpoint,
			UsePathStyle:           storage.UsePathStyle,
			CreateBucketIfNotExist: storage.CreateBucket,
		})
		if err != nil {
			return "", nil, err
		}
		return "s3", store, nil

	default:
		return "", nil, fmt.Errorf("unsupported storage backend type: %s", storage.Type)
	}
}

// BuildEventSink assembles the configured event sinks. The returned close
// function releases the audit database pool and is never nil.
func (c *ServerConfig) BuildEventSink(ctx context.Context, logger *slog.Logger) (simpleblob.EventSink, func(), error) {
	var sinks simpleblob.MultiEventSink
	closeFn := func() {}

	if c.EnableEventLogging {
		sinks = append(sinks, simpleblob.NewLoggingEventSink(logger))
	}

	if c.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return nil, closeFn, err
		}
		sink := postgres.NewWithPool(pool)
		if err := sink.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, closeFn, err
		}
		sinks = append(sinks, sink)
		closeFn = pool.Close
	}

	switch len(sinks) {
	case 0:
		return simpleblob.NewNoopEventSink(), closeFn, nil
	case 1:
		return sinks[0], closeFn, nil
	default:
		return sinks, closeFn, nil
	}
}

// BuildGenerator returns the identifier generator for IDScheme
func (c *ServerConfig) BuildGenerator() objectkey.Generator {
	if c.IDScheme == IDSchemeUUID {
		return objectkey.NewUUIDGenerator()
	}
	return objectkey.NewRecommendedGenerator()
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (simpleblob.Service, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	storeName, store, err := c.BuildStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	sink, closeFn, err := c.BuildEventSink(ctx, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build event sink: %w", err)
	}

	svc, err := simpleblob.New(
		simpleblob.WithIndex(memory.New()),
		simpleblob.WithBlobStore(storeName, store),
		simpleblob.WithGenerator(c.BuildGenerator()),
		simpleblob.WithEventSink(sink),
		simpleblob.WithLogger(logger),
	)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return svc, closeFn, nil
}
