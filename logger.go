package unsupervised

import (
	"log/slog"
	"os"
)

// NewTextLogger returns a human-readable logger writing to stderr at the
// given minimum level. Assign it to the Logger field of any config to see
// iteration summaries (Debug) and convergence warnings (Warn).
func NewTextLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger returns a logger emitting JSON records to stderr.
func NewJSONLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// discardLogger is the default when a config leaves Logger nil.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// loggerOrDiscard returns l, or a discarding logger when l is nil.
func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discardLogger()
	}
	return l
}
