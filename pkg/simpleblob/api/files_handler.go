package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blob/pkg/simpleblob"
)

// multipartOverhead is the allowance for multipart boundaries and part
// headers on top of the file size limit
const multipartOverhead = 64 << 10

// uploadField is the multipart form field carrying the file
const uploadField = "file"

// FilesHandler serves the upload, list, download and delete endpoints
type FilesHandler struct {
	service        simpleblob.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewFilesHandler(service simpleblob.Service, maxUploadBytes int64, logger *slog.Logger) *FilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilesHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	Success  bool                       `json:"success"`
	FileID   string                     `json:"fileId"`
	FileInfo *simpleblob.ObjectMetadata `json:"fileInfo"`
}

// MessageResponse reports success with a human readable message
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string    `json:"status"`
	Objects   int       `json:"objects"`
	Timestamp time.Time `json:"timestamp"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Success: false, Error: message})
}

// Upload streams the "file" part of a multipart request into the service
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	bodyLimit := h.maxUploadBytes + multipartOverhead
	if r.ContentLength > bodyLimit {
		h.logger.Warn("Upload rejected, declared body too large", "content_length", r.ContentLength, "limit", h.maxUploadBytes)
		w.Header().Set("Connection", "close")
		writeError(w, r, http.StatusRequestEntityTooLarge, tooLargeMessage(h.maxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Expected a multipart/form-data request")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, "No file uploaded")
			return
		}
		if err != nil {
			h.handleUploadError(w, r, err)
			return
		}

		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		metadata, err := h.service.Upload(r.Context(), simpleblob.UploadRequest{
			OriginalName: part.FileName(),
			ContentType:  part.Header.Get("Content-Type"),
			Reader:       &limitedReader{r: part, remaining: h.maxUploadBytes},
		})
		part.Close()
		if err != nil {
			h.handleUploadError(w, r, err)
			return
		}

		render.JSON(w, r, UploadResponse{
			Success:  true,
			FileID:   metadata.ID,
			FileInfo: metadata,
		})
		return
	}
}

func (h *FilesHandler) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.Is(err, simpleblob.ErrPayloadTooLarge) || errors.As(err, &maxBytesErr) {
		h.logger.Warn("Upload rejected, payload too large", "limit", h.maxUploadBytes)
		w.Header().Set("Connection", "close")
		writeError(w, r, http.StatusRequestEntityTooLarge, tooLargeMessage(h.maxUploadBytes))
		return
	}

	h.logger.Error("Failed to upload file", "error", err)
	writeError(w, r, http.StatusInternalServerError, err.Error())
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("File too large (limit %d bytes)", limit)
}

// List returns the metadata of every stored object
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	objects, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list files", "error", err)
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, objects)
}

// Download streams the object as an attachment named after the original file
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileId")

	metadata, reader, err := h.service.Retrieve(r.Context(), id)
	if err != nil {
		if simpleblob.IsNotFound(err) {
			writeError(w, r, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("Failed to retrieve file", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to retrieve file")
		return
	}
	defer reader.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": metadata.OriginalName})
	if disposition == "" {
		disposition = "attachment"
	}

	header := w.Header()
	header.Set("Content-Disposition", disposition)
	header.Set("Content-Type", metadata.ContentType)
	header.Set("Content-Length", strconv.FormatInt(metadata.Size, 10))
	if metadata.Checksum != "" {
		header.Set("ETag", strconv.Quote(metadata.Checksum))
	}
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	// Headers are already sent, so a copy failure can only be logged
	if n, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("Download interrupted", "id", id, "written", n, "error", err)
	}
}

// Delete removes the object from the index and the blob store
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileId")

	if err := h.service.Remove(r.Context(), id); err != nil {
		if simpleblob.IsNotFound(err) {
			writeError(w, r, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error("Failed to delete file", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	render.JSON(w, r, MessageResponse{
		Success: true,
		Message: "File deleted successfully",
	})
}

// Health reports liveness and the number of stored objects
func (h *FilesHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "healthy",
		Objects:   h.service.Count(),
		Timestamp: time.Now().UTC(),
	})
}

// limitedReader fails with ErrPayloadTooLarge once more than remaining bytes
// were read
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, simpleblob.ErrPayloadTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	if int64(n) > l.remaining {
		l.remaining = -1
		return 0, simpleblob.ErrPayloadTooLarge
	}
	l.remaining -= int64(n)
	return n, err
}
