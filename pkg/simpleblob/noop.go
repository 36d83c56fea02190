package simpleblob

import (
	"context"
	"log/slog"
)

// NoopEventSink is an event sink that does nothing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-op event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ObjectUploaded(ctx context.Context, metadata *ObjectMetadata) error {
	return nil
}

func (n *NoopEventSink) ObjectRemoved(ctx context.Context, metadata *ObjectMetadata) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other action
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) ObjectUploaded(ctx context.Context, metadata *ObjectMetadata) error {
	l.logger.InfoContext(ctx, "event: object uploaded",
		"id", metadata.ID,
		"storage_name", metadata.StorageName,
		"size", metadata.Size,
	)
	return nil
}

func (l *LoggingEventSink) ObjectRemoved(ctx context.Context, metadata *ObjectMetadata) error {
	l.logger.InfoContext(ctx, "event: object removed",
		"id", metadata.ID,
		"storage_name", metadata.StorageName,
	)
	return nil
}

// MultiEventSink fans events out to several sinks and returns the first error
type MultiEventSink []EventSink

func (m MultiEventSink) ObjectUploaded(ctx context.Context, metadata *ObjectMetadata) error {
	var first error
	for _, sink := range m {
		if err := sink.ObjectUploaded(ctx, metadata); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiEventSink) ObjectRemoved(ctx context.Context, metadata *ObjectMetadata) error {
	var first error
	for _, sink := range m {
		if err := sink.ObjectRemoved(ctx, metadata); err != nil && first == nil {
			first = err
		}
	}
	return first
}
