// Package logging builds the slog handler used by the server: a colored
// charmbracelet handler for local development and JSON for production.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options control the handler produced by New
type Options struct {
	Level        slog.Level
	Format       string // text or json
	ReportCaller bool
}

// ParseLevel accepts debug, info, warn/warning and error
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a logger writing to w
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	switch opts.Format {
	case "", FormatText:
		handler := log.NewWithOptions(w, log.Options{
			Level:           charmLevel(opts.Level),
			TimeFormat:      time.RFC3339,
			ReportTimestamp: true,
			TimeFunction:    log.NowUTC,
			ReportCaller:    opts.ReportCaller,
		})
		return slog.New(handler), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.ReportCaller,
		})), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

func charmLevel(level slog.Level) log.Level {
	switch {
	case level <= slog.LevelDebug:
		return log.DebugLevel
	case level <= slog.LevelInfo:
		return log.InfoLevel
	case level <= slog.LevelWarn:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}
