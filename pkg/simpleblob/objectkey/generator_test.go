package objectkey

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "report.pdf", ".pdf"},
		{"multiple dots", "archive.tar.gz", ".gz"},
		{"no extension", "Makefile", ""},
		{"leading dot only", ".bashrc", ""},
		{"leading dot with extension", ".config.yaml", ".yaml"},
		{"trailing dot", "odd.", "."},
		{"dots only", "..", ""},
		{"empty", "", ""},
		{"with directory", "some/dir/notes.txt", ".txt"},
		{"dot in directory only", "dir.d/file", ""},
		{"trailing slash", "dir.d/", ".d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extension(tt.input))
		})
	}
}

func TestTimestampGenerator(t *testing.T) {
	fixed := time.UnixMilli(1718000000123)
	gen := NewTimestampGenerator(
		WithClock(func() time.Time { return fixed }),
		WithRand(func(n int64) int64 {
			assert.Equal(t, int64(randomRange), n)
			return 42
		}),
	)

	tests := []struct {
		name        string
		original    string
		storageName string
	}{
		{"with extension", "report.pdf", "1718000000123-42.pdf"},
		{"without extension", "README", "1718000000123-42"},
		{"hidden file", ".env", "1718000000123-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := gen.Generate(tt.original)
			assert.Equal(t, tt.storageName, key.StorageName)
			assert.Equal(t, "1718000000123-42", key.ID)
		})
	}
}

func TestTimestampGenerator_IDIsStorageNamePrefix(t *testing.T) {
	gen := NewTimestampGenerator()
	for i := 0; i < 100; i++ {
		key := gen.Generate("photo.jpeg")
		require.True(t, strings.HasPrefix(key.StorageName, key.ID))
		assert.Equal(t, ".jpeg", strings.TrimPrefix(key.StorageName, key.ID))
		assert.NotContains(t, key.StorageName, "/")
	}
}

func TestTimestampGenerator_Distinct(t *testing.T) {
	gen := NewTimestampGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		key := gen.Generate("a.bin")
		_, dup := seen[key.ID]
		require.False(t, dup, "duplicate id %s", key.ID)
		seen[key.ID] = struct{}{}
	}
}

func TestUUIDGenerator(t *testing.T) {
	gen := NewUUIDGenerator()

	key := gen.Generate("image.png")
	_, err := uuid.Parse(key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.ID+".png", key.StorageName)

	other := gen.Generate("image.png")
	assert.NotEqual(t, key.ID, other.ID)
}

func TestGeneratorFunc(t *testing.T) {
	var gen Generator = GeneratorFunc(func(originalName string) Key {
		return Key{StorageName: "fixed" + Extension(originalName), ID: "fixed"}
	})

	key := gen.Generate("x.txt")
	assert.Equal(t, Key{StorageName: "fixed.txt", ID: "fixed"}, key)
}
