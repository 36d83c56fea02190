package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-blob/pkg/simpleblob"
)

const backendName = "fs"

// tempPrefix marks in-flight uploads inside the storage root
const tempPrefix = ".upload-"

// Backend is a filesystem implementation of the simpleblob.BlobStore
// interface. Every blob is a single file directly under BaseDir named by its
// storage name.
type Backend struct {
	baseDir  string
	dirMode  os.FileMode
	fileMode os.FileMode
}

// Config options for the filesystem backend
type Config struct {
	BaseDir  string      // Storage root, created if missing
	DirMode  os.FileMode // Permission bits for the storage root (default 0755)
	FileMode os.FileMode // Permission bits for blob files (default 0644)
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.DirMode == 0 {
		config.DirMode = 0o755
	}
	if config.FileMode == 0 {
		config.FileMode = 0o644
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	b := &Backend{
		baseDir:  baseDir,
		dirMode:  config.DirMode,
		fileMode: config.FileMode,
	}
	if err := b.ensureRoot(); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return b, nil
}

// BaseDir returns the absolute storage root
func (b *Backend) BaseDir() string {
	return b.baseDir
}

func (b *Backend) ensureRoot() error {
	return os.MkdirAll(b.baseDir, b.dirMode)
}

func (b *Backend) path(storageName string) (string, error) {
	if storageName == "" || storageName == "." || storageName == ".." ||
		strings.ContainsAny(storageName, `/\`) || strings.HasPrefix(storageName, tempPrefix) {
		return "", simpleblob.ErrInvalidStorageName
	}
	return filepath.Join(b.baseDir, storageName), nil
}

// Put streams reader into a temporary file and links it into place once the
// copy completed. The final name is claimed exclusively, so an existing blob
// is never overwritten.
func (b *Backend) Put(ctx context.Context, storageName string, reader io.Reader) (*simpleblob.BlobInfo, error) {
	finalPath, err := b.path(storageName)
	if err != nil {
		return nil, err
	}

	// Create the root on first use in case it was removed after startup
	if err := b.ensureRoot(); err != nil {
		return nil, b.storageError("put", storageName, err)
	}

	if _, err := os.Lstat(finalPath); err == nil {
		return nil, simpleblob.ErrBlobExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, b.storageError("put", storageName, err)
	}

	tmp, err := os.CreateTemp(b.baseDir, tempPrefix+"*")
	if err != nil {
		return nil, b.storageError("put", storageName, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, &contextReader{ctx: ctx, r: reader})
	if err != nil {
		_ = tmp.Close()
		return nil, b.storageError("put", storageName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return nil, b.storageError("put", storageName, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, b.storageError("put", storageName, err)
	}
	if err := os.Chmod(tmpPath, b.fileMode); err != nil {
		return nil, b.storageError("put", storageName, err)
	}

	// Link fails if the name appeared while we were copying.
	if err := os.Link(tmpPath, finalPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, simpleblob.ErrBlobExists
		}
		return nil, b.storageError("put", storageName, err)
	}
	committed = true
	_ = os.Remove(tmpPath)

	return &simpleblob.BlobInfo{
		Size:     written,
		Location: finalPath,
	}, nil
}

// Get opens the blob for reading
func (b *Backend) Get(ctx context.Context, storageName string) (io.ReadCloser, error) {
	filePath, err := b.path(storageName)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, simpleblob.ErrBlobNotFound
	} else if err != nil {
		return nil, b.storageError("get", storageName, err)
	}

	return file, nil
}

// Delete removes the blob from the filesystem
func (b *Backend) Delete(ctx context.Context, storageName string) error {
	filePath, err := b.path(storageName)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return simpleblob.ErrBlobNotFound
		}
		return b.storageError("delete", storageName, err)
	}

	return nil
}

func (b *Backend) storageError(op, key string, err error) error {
	return &simpleblob.StorageError{
		Backend: backendName,
		Key:     key,
		Op:      op,
		Err:     err,
	}
}

// contextReader stops a copy as soon as ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

var _ simpleblob.BlobStore = (*Backend)(nil)
