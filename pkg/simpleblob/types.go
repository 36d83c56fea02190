package simpleblob

import (
	"io"
	"time"
)

// ObjectMetadata describes one stored object. It is created once, at the end
// of a successful upload, and never mutated afterwards.
//
// JSON names match the fileInfo shape returned by the upload endpoint.
type ObjectMetadata struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	StorageName  string    `json:"filename"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"mimetype"`
	UploadedAt   time.Time `json:"uploadDate"`
	Location     string    `json:"path"`
	Checksum     string    `json:"checksum,omitempty"`
}

// Clone returns a copy of the metadata
func (m *ObjectMetadata) Clone() *ObjectMetadata {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// BlobInfo is returned by a BlobStore after a successful write
type BlobInfo struct {
	Size     int64
	Location string
}

// UploadRequest contains the parameters for uploading an object
type UploadRequest struct {
	OriginalName string
	ContentType  string
	Reader       io.Reader
}

// DefaultContentType is used when the client does not supply one
const DefaultContentType = "application/octet-stream"
