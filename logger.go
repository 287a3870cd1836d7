package svo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with octree-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithDepth adds a max_depth field to the logger.
func (l *Logger) WithDepth(depth uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("max_depth", depth),
	}
}

// WithCapacity adds a capacity field to the logger.
func (l *Logger) WithCapacity(capacity int) *Logger {
	return &Logger{
		Logger: l.Logger.With("capacity", capacity),
	}
}

// WithCoord adds x, y and z fields to the logger.
func (l *Logger) WithCoord(x, y, z int32) *Logger {
	return &Logger{
		Logger: l.Logger.With("x", x, "y", y, "z", z),
	}
}

func (l *Logger) debugEnabled() bool {
	return l.Enabled(context.Background(), slog.LevelDebug)
}

// LogSubdivide logs the split of a leaf into 8 children.
func (l *Logger) LogSubdivide(depth int, node, children uint32) {
	if !l.debugEnabled() {
		return
	}
	l.Debug("subdivided leaf",
		"depth", depth,
		"node", node,
		"children", children,
	)
}

// LogCompress logs the collapse of 8 uniform leaves into their parent.
func (l *Logger) LogCompress(depth int, node, children uint32) {
	if !l.debugEnabled() {
		return
	}
	l.Debug("compressed children",
		"depth", depth,
		"node", node,
		"children", children,
	)
}

// LogExhausted logs a write abandoned because the arena ran out of groups.
func (l *Logger) LogExhausted(x, y, z int32, err error) {
	l.WithCoord(x, y, z).Error("node arena exhausted", "error", err)
}
