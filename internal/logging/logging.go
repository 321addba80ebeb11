// Where: cli/internal/logging/logging.go
// What: slog logger construction with level parsing and secret redaction.
// Why: Give CLI and job modes one operational log format that never carries credentials.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/poruru/envdb/cli/internal/meta"
)

// Redacted replaces sensitive attribute values.
const Redacted = "[REDACTED]"

// Format selects the handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures New.
type Options struct {
	Level  string
	Format Format
	// RunID tags every record; empty generates one.
	RunID string
}

var sensitiveKeys = []string{"password", "secret", "token", "access_key", "pgpassword"}

// ParseLevel maps debug, info, warn, and error to slog levels.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (want debug, info, warn, or error)", raw)
	}
}

// New builds a logger writing to w. JSON loggers carry service and run_id attributes.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}

	var handler slog.Handler
	switch opts.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	case FormatText, "":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}
	logger := slog.New(handler).With("run_id", runID)
	if opts.Format == FormatJSON {
		logger = logger.With("service", meta.AppName)
	}
	return logger, nil
}

// NewRunID returns a fresh invocation identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func redact(_ []string, attr slog.Attr) slog.Attr {
	if IsSensitiveKey(attr.Key) {
		return slog.String(attr.Key, Redacted)
	}
	return attr
}

// IsSensitiveKey reports whether an attribute or variable name denotes a credential.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, needle := range sensitiveKeys {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
