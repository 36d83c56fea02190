package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/simple-blob/pkg/simpleblob"
)

// RouterConfig configures NewRouter
type RouterConfig struct {
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter mounts the object endpoints together with health and metrics
func NewRouter(service simpleblob.Service, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files := NewFilesHandler(service, cfg.MaxUploadBytes, logger)
	metrics := NewPrometheusCollector(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(cfg.AllowedOrigins, nil, nil))
	r.Use(MetricsMiddleware(metrics))
	r.Use(middleware.GetHead)

	r.Post("/upload", files.Upload)
	r.With(CompressionMiddleware).Get("/files", files.List)
	r.Get("/file/{fileId}", files.Download)
	r.Delete("/file/{fileId}", files.Delete)

	r.Get("/health", files.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
