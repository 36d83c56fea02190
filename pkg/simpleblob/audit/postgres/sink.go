// Package postgres records object lifecycle events in an append-only
// PostgreSQL table. The table is an audit trail only; it is never read back
// to rebuild the metadata index.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-blob/pkg/simpleblob"
)

const (
	ActionUploaded = "uploaded"
	ActionRemoved  = "removed"
)

const schema = `
CREATE TABLE IF NOT EXISTS object_events (
	id            UUID PRIMARY KEY,
	object_id     TEXT NOT NULL,
	action        TEXT NOT NULL,
	original_name TEXT NOT NULL,
	size          BIGINT NOT NULL,
	content_type  TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS object_events_object_id_idx ON object_events (object_id);`

const insertEvent = `
	INSERT INTO object_events (
		id, object_id, action, original_name, size, content_type, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
}

// Sink implements simpleblob.EventSink using PostgreSQL
type Sink struct {
	db  DBTX
	now func() time.Time
}

// New creates a sink writing through db
func New(db DBTX) *Sink {
	return &Sink{db: db, now: time.Now}
}

// NewWithPool creates a sink backed by a connection pool
func NewWithPool(pool *pgxpool.Pool) *Sink {
	return New(pool)
}

// Connect opens a pool for databaseURL and verifies it is reachable
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the events table when missing
func (s *Sink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return handlePostgresError("ensure schema", err)
	}
	return nil
}

func (s *Sink) ObjectUploaded(ctx context.Context, metadata *simpleblob.ObjectMetadata) error {
	return s.record(ctx, ActionUploaded, metadata)
}

func (s *Sink) ObjectRemoved(ctx context.Context, metadata *simpleblob.ObjectMetadata) error {
	return s.record(ctx, ActionRemoved, metadata)
}

func (s *Sink) record(ctx context.Context, action string, metadata *simpleblob.ObjectMetadata) error {
	_, err := s.db.Exec(ctx, insertEvent,
		uuid.New(),
		metadata.ID,
		action,
		metadata.OriginalName,
		metadata.Size,
		metadata.ContentType,
		s.now().UTC(),
	)
	if err != nil {
		return handlePostgresError("record "+action, err)
	}
	return nil
}

func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("table object_events does not exist - run EnsureSchema: %w", err)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

var _ simpleblob.EventSink = (*Sink)(nil)
