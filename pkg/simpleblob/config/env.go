package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv applies environment variable overrides.
//
// Environment variables:
//
//	PORT                  - Server port (default: "3000")
//	ENVIRONMENT           - Runtime environment (default: "development")
//	STORAGE_URL           - "memory://", "file://<dir>" or "s3://bucket/prefix?region=..."
//	MAX_UPLOAD_BYTES      - Per-upload limit (default: 1 GiB)
//	ID_SCHEME             - "timestamp" (default) or "uuid"
//	DATABASE_URL          - Postgres URL for the audit trail; empty disables it
//	LOG_LEVEL, LOG_FORMAT - Logger level and format
//	AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION - S3 credentials
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML, JSON, TOML or .env file. Environment variables are
// applied after the file and take precedence.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// StorageConfig is the parsed form of a storage URL
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// fs
	BaseDir string

	// s3
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	CreateBucket bool
}

// ParseStorageURL parses a storage connection string:
//
//	memory://                       - In-memory storage
//	file:///var/data, file://data   - Filesystem storage, relative paths allowed
//	s3://bucket/prefix?region=us-east-1&endpoint=http://localhost:9000&path_style=true&create_bucket=true
func ParseStorageURL(raw string) (StorageConfig, error) {
	if raw == "" || raw == "memory" || raw == "memory://" {
		return StorageConfig{Type: "memory"}, nil
	}

	if strings.HasPrefix(raw, "file://") {
		dir := strings.TrimPrefix(raw, "file://")
		if dir == "" {
			return StorageConfig{}, fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		return StorageConfig{Type: "fs", BaseDir: dir}, nil
	}

	if strings.HasPrefix(raw, "s3://") {
		return parseS3URL(raw)
	}

	return StorageConfig{}, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
}

func parseS3URL(raw string) (StorageConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return StorageConfig{}, fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	q := u.Query()
	cfg := StorageConfig{
		Type:     "s3",
		Bucket:   u.Host,
		Prefix:   strings.Trim(u.Path, "/"),
		Region:   q.Get("region"),
		Endpoint: q.Get("endpoint"),
	}

	if cfg.UsePathStyle, err = parseBoolParam(q, "path_style"); err != nil {
		return StorageConfig{}, err
	}
	if cfg.CreateBucket, err = parseBoolParam(q, "create_bucket"); err != nil {
		return StorageConfig{}, err
	}

	return cfg, nil
}

func parseBoolParam(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for STORAGE_URL parameter %s: %w", key, err)
	}
	return parsed, nil
}
