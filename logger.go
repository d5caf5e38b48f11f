package fluxorblob

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with engine-specific helpers so log fields stay
// consistent across components.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler gets a
// text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithBucket tags the logger with a bucket field.
func (l *Logger) WithBucket(bucket string) *Logger {
	return &Logger{Logger: l.Logger.With("bucket", bucket)}
}

// WithKey tags the logger with a key field.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{Logger: l.Logger.With("key", key)}
}

// LogPut logs a put operation.
func (l *Logger) LogPut(ctx context.Context, key string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "put failed", "key", key, "size", size, "error", err)
	} else {
		l.DebugContext(ctx, "put completed", "key", key, "size", size)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, key string, removed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed", "key", key, "error", err)
	} else {
		l.DebugContext(ctx, "remove completed", "key", key, "removed", removed)
	}
}

// LogRebuild logs an index rebuild.
func (l *Logger) LogRebuild(ctx context.Context, keys int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index rebuild failed", "error", err)
	} else {
		l.InfoContext(ctx, "index rebuild completed", "keys", keys)
	}
}

// LogSnapshot logs an index snapshot save.
func (l *Logger) LogSnapshot(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed", "path", path, "error", err)
	} else {
		l.InfoContext(ctx, "snapshot saved", "path", path)
	}
}
