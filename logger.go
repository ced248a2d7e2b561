package membuf

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with membuf-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithResource adds the resource id and name fields to the logger.
func (l *Logger) WithResource(id int) *Logger {
	return &Logger{
		Logger: l.Logger.With("resource", id, "name", ResourceName(id)),
	}
}

// WithHandle adds the handle serial to the logger.
func (l *Logger) WithHandle(serial uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("handle", serial),
	}
}

// LogResize logs a resize operation.
func (l *Logger) LogResize(ctx context.Context, id, oldSize, newSize int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resize failed",
			"resource", id,
			"size", oldSize,
			"requested", newSize,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "resource resized",
			"resource", id,
			"old_size", oldSize,
			"size", newSize,
		)
	}
}

// LogActiveCount logs a pool growth or shrink.
func (l *Logger) LogActiveCount(ctx context.Context, from, target, active int, err error) {
	switch {
	case err != nil && active != from:
		l.WarnContext(ctx, "active count partially changed",
			"from", from,
			"target", target,
			"active", active,
			"error", err,
		)
	case err != nil:
		l.ErrorContext(ctx, "active count change failed",
			"from", from,
			"target", target,
			"error", err,
		)
	case from != active:
		l.InfoContext(ctx, "active count changed",
			"from", from,
			"active", active,
		)
	}
}

// LogCreate logs the creation or destruction of a slot's resource.
func (l *Logger) LogCreate(ctx context.Context, id, size int, generation uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resource creation failed",
			"resource", id,
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "resource created",
			"resource", id,
			"size", size,
			"generation", generation,
		)
	}
}

// LogDestroy logs the destruction of a slot's resource.
func (l *Logger) LogDestroy(ctx context.Context, id int, generation uint64) {
	l.DebugContext(ctx, "resource destroyed",
		"resource", id,
		"generation", generation,
	)
}

// LogOpen logs a handle open.
func (l *Logger) LogOpen(ctx context.Context, id int, serial uint32, generation uint64, err error) {
	if err != nil {
		l.DebugContext(ctx, "open failed",
			"resource", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "handle opened",
			"resource", id,
			"handle", serial,
			"generation", generation,
		)
	}
}

// LogClose logs a handle close.
func (l *Logger) LogClose(ctx context.Context, id int, serial uint32) {
	l.DebugContext(ctx, "handle closed",
		"resource", id,
		"handle", serial,
	)
}

// LogIO logs a read or write through a handle.
func (l *Logger) LogIO(ctx context.Context, op string, id int, serial uint32, cursor, requested, n int, err error) {
	if err != nil {
		l.DebugContext(ctx, op+" failed",
			"resource", id,
			"handle", serial,
			"cursor", cursor,
			"len", requested,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"resource", id,
			"handle", serial,
			"cursor", cursor,
			"len", requested,
			"bytes", n,
		)
	}
}

// LogTeardown logs pool teardown.
func (l *Logger) LogTeardown(ctx context.Context, destroyed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "teardown failed",
			"destroyed", destroyed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "pool torn down",
			"destroyed", destroyed,
		)
	}
}
