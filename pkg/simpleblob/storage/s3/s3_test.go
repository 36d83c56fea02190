package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blob/pkg/simpleblob"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(ctx, Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("UnsupportedSSE", func(t *testing.T) {
		_, err := New(ctx, Config{Bucket: "b", EnableSSE: true, SSEAlgorithm: "rot13"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported SSE algorithm")
	})

	t.Run("Defaults", func(t *testing.T) {
		backend, err := New(ctx, Config{
			Bucket:          "test-bucket",
			Prefix:          "/uploads/",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
		assert.Equal(t, "uploads", backend.config.Prefix)
	})
}

func TestS3Backend_Key(t *testing.T) {
	backend := &Backend{config: Config{Prefix: "uploads"}}

	key, err := backend.key("1-2.txt")
	require.NoError(t, err)
	assert.Equal(t, "uploads/1-2.txt", key)

	for _, name := range []string{"", ".", "..", "a/b"} {
		_, err := backend.key(name)
		assert.ErrorIs(t, err, simpleblob.ErrInvalidStorageName, name)
	}

	backend.config.Prefix = ""
	key, err = backend.key("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", key)
}

func TestHasErrorCode(t *testing.T) {
	err := fmt.Errorf("upload: %w", &smithy.GenericAPIError{Code: "PreconditionFailed"})
	assert.True(t, hasErrorCode(err, "PreconditionFailed"))
	assert.False(t, hasErrorCode(err, "NoSuchKey"))
	assert.False(t, hasErrorCode(errors.New("plain"), "PreconditionFailed"))

	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NotFound"}))
}

// TestS3Backend_Integration runs against a real S3-compatible endpoint such as
// MinIO. Set TEST_S3_ENDPOINT to enable it.
func TestS3Backend_Integration(t *testing.T) {
	endpoint := os.Getenv("TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := New(ctx, Config{
		Region:                 "us-east-1",
		Bucket:                 "simple-blob-test",
		Prefix:                 fmt.Sprintf("it-%d", time.Now().UnixNano()),
		AccessKeyID:            os.Getenv("TEST_S3_ACCESS_KEY"),
		SecretAccessKey:        os.Getenv("TEST_S3_SECRET_KEY"),
		Endpoint:               endpoint,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	data := []byte("hello s3")
	info, err := backend.Put(ctx, "object.txt", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.True(t, strings.HasPrefix(info.Location, "s3://simple-blob-test/"))

	_, err = backend.Put(ctx, "object.txt", bytes.NewReader([]byte("other")))
	assert.ErrorIs(t, err, simpleblob.ErrBlobExists)

	rc, err := backend.Get(ctx, "object.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, "object.txt"))
	assert.ErrorIs(t, backend.Delete(ctx, "object.txt"), simpleblob.ErrBlobNotFound)

	_, err = backend.Get(ctx, "object.txt")
	assert.ErrorIs(t, err, simpleblob.ErrBlobNotFound)
}
