package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blob/pkg/simpleblob"
)

func newBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	tmp := t.TempDir()
	b, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)
	return b, tmp
}

// dirEntries lists the names in dir, including temp files
func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFSBackend_BasicOps(t *testing.T) {
	backend, tmp := newBackend(t)
	ctx := context.Background()
	name := "1718000000123-42.txt"

	data := []byte("hello fs")
	info, err := backend.Put(ctx, name, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.Equal(t, filepath.Join(backend.BaseDir(), name), info.Location)
	assert.True(t, filepath.IsAbs(info.Location))

	rc, err := backend.Get(ctx, name)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, name))
	_, err = os.Stat(filepath.Join(tmp, name))
	assert.True(t, os.IsNotExist(err), "expected file removed, stat err=%v", err)
}

func TestFSBackend_ZeroBytes(t *testing.T) {
	backend, _ := newBackend(t)
	ctx := context.Background()

	info, err := backend.Put(ctx, "empty", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size)

	rc, err := backend.Get(ctx, "empty")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFSBackend_PutDoesNotOverwrite(t *testing.T) {
	backend, tmp := newBackend(t)
	ctx := context.Background()

	_, err := backend.Put(ctx, "taken.bin", strings.NewReader("first"))
	require.NoError(t, err)

	r := strings.NewReader("second")
	_, err = backend.Put(ctx, "taken.bin", r)
	assert.ErrorIs(t, err, simpleblob.ErrBlobExists)
	assert.Equal(t, int64(len("second")), int64(r.Len()), "payload must not be consumed")

	content, err := os.ReadFile(filepath.Join(tmp, "taken.bin"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
	assert.Equal(t, []string{"taken.bin"}, dirEntries(t, tmp))
}

func TestFSBackend_InvalidNames(t *testing.T) {
	backend, _ := newBackend(t)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "../escape", ".upload-123"} {
		t.Run(name, func(t *testing.T) {
			_, err := backend.Put(ctx, name, strings.NewReader("x"))
			assert.ErrorIs(t, err, simpleblob.ErrInvalidStorageName)

			_, err = backend.Get(ctx, name)
			assert.ErrorIs(t, err, simpleblob.ErrInvalidStorageName)

			err = backend.Delete(ctx, name)
			assert.ErrorIs(t, err, simpleblob.ErrInvalidStorageName)
		})
	}
}

func TestFSBackend_Missing(t *testing.T) {
	backend, _ := newBackend(t)
	ctx := context.Background()

	_, err := backend.Get(ctx, "nope")
	assert.ErrorIs(t, err, simpleblob.ErrBlobNotFound)

	err = backend.Delete(ctx, "nope")
	assert.ErrorIs(t, err, simpleblob.ErrBlobNotFound)
}

type failingReader struct {
	sent bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestFSBackend_FailedPutLeavesNothing(t *testing.T) {
	backend, tmp := newBackend(t)

	_, err := backend.Put(context.Background(), "broken.bin", &failingReader{})
	require.Error(t, err)
	assert.True(t, simpleblob.IsStorageError(err))
	assert.Empty(t, dirEntries(t, tmp))
}

func TestFSBackend_CancelledPutLeavesNothing(t *testing.T) {
	backend, tmp := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.Put(ctx, "cancelled.bin", strings.NewReader("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirEntries(t, tmp))
}

func TestFSBackend_RecreatesRoot(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "nested", "uploads")
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)
	require.DirExists(t, tmp)

	require.NoError(t, os.RemoveAll(tmp))

	_, err = backend.Put(context.Background(), "again.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(tmp, "again.txt"))
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")
}
