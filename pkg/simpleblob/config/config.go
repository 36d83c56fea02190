package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/simple-blob/pkg/simpleblob/logging"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultMaxUploadBytes is the 1 GiB per-file upload limit.
const DefaultMaxUploadBytes int64 = 1 << 30

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "3000",
		Environment:        "development",
		StorageURL:         "file://uploads",
		MaxUploadBytes:     DefaultMaxUploadBytes,
		LogLevel:           "info",
		IDScheme:           IDSchemeTimestamp,
		EnableEventLogging: true,
		ShutdownTimeout:    10 * time.Second,
	}
}

const (
	IDSchemeTimestamp = "timestamp"
	IDSchemeUUID      = "uuid"
)

// ServerConfig represents configuration for the simple-blob server. Tags are
// read by cleanenv; values not present in the environment or file keep their
// defaults.
type ServerConfig struct {
	Port        string `yaml:"port" json:"port" env:"PORT" env-description:"HTTP listen port (default 3000)"`
	Environment string `yaml:"environment" json:"environment" env:"ENVIRONMENT" env-description:"development, production or testing"`

	// Storage
	StorageURL     string        `yaml:"storage_url" json:"storage_url" env:"STORAGE_URL" env-description:"memory://, file://<dir> or s3://<bucket>[/<prefix>]?region=&endpoint=&path_style=&create_bucket="`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" json:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-description:"per-upload size limit in bytes (default 1 GiB)"`
	IDScheme       string        `yaml:"id_scheme" json:"id_scheme" env:"ID_SCHEME" env-description:"timestamp or uuid"`
	S3             S3Credentials `yaml:"s3" json:"s3"`

	// Audit trail, disabled when empty
	DatabaseURL string `yaml:"database_url" json:"database_url" env:"DATABASE_URL" env-description:"postgres URL for the object event audit table"`

	// Logging
	LogLevel           string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL" env-description:"debug, info, warn or error"`
	LogFormat          string `yaml:"log_format" json:"log_format" env:"LOG_FORMAT" env-description:"text or json (default json in production)"`
	EnableEventLogging bool   `yaml:"enable_event_logging" json:"enable_event_logging" env:"ENABLE_EVENT_LOGGING" env-description:"log object lifecycle events"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-description:"graceful shutdown deadline"`
}

// S3Credentials are only used with an s3:// storage URL
type S3Credentials struct {
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Region          string `yaml:"region" json:"region" env:"AWS_REGION"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got: %d", c.MaxUploadBytes)
	}

	if _, err := ParseStorageURL(c.StorageURL); err != nil {
		return err
	}

	if c.IDScheme != IDSchemeTimestamp && c.IDScheme != IDSchemeUUID {
		return fmt.Errorf("id_scheme must be '%s' or '%s'", IDSchemeTimestamp, IDSchemeUUID)
	}

	if c.DatabaseURL != "" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("unsupported DATABASE_URL format (use 'postgresql://...')")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.LogFormat {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("log_format must be '%s' or '%s'", logging.FormatText, logging.FormatJSON)
	}

	if c.ShutdownTimeout < 0 {
		return errors.New("shutdown_timeout cannot be negative")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// LoggingOptions resolves the logger settings. Production defaults to JSON.
func (c *ServerConfig) LoggingOptions() logging.Options {
	level, _ := logging.ParseLevel(c.LogLevel)
	format := c.LogFormat
	if format == "" {
		format = logging.FormatText
		if c.IsProduction() {
			format = logging.FormatJSON
		}
	}
	return logging.Options{
		Level:        level,
		Format:       format,
		ReportCaller: level <= slog.LevelDebug,
	}
}
