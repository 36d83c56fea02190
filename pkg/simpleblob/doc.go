// Package simpleblob implements a minimal binary object store.
//
// Clients upload a stream of bytes together with its original file name and
// content type, receive an opaque identifier, and later retrieve or delete the
// object by that identifier. Bytes live in a BlobStore (filesystem, memory or
// S3); descriptive metadata lives in an Index that is owned by the Service and
// scoped to the process.
//
// Basic usage:
//
//	store, err := fs.New(fs.Config{BaseDir: "./uploads"})
//	if err != nil {
//		return err
//	}
//	svc, err := simpleblob.New(
//		simpleblob.WithIndex(memory.New()),
//		simpleblob.WithBlobStore("fs", store),
//	)
//	if err != nil {
//		return err
//	}
//	meta, err := svc.Upload(ctx, simpleblob.UploadRequest{
//		OriginalName: "report.pdf",
//		ContentType:  "application/pdf",
//		Reader:       file,
//	})
//
// Retrieve and Remove consult the index first and only then touch the blob
// store. An id that is not in the index yields ErrObjectNotFound without any
// storage access, so of two concurrent removes for the same id exactly one
// succeeds.
package simpleblob
