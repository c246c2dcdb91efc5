package fid

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with fid-specific helpers.
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
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithVector adds the shape of v to the logger.
func (l *Logger) WithVector(v *BitVector) *Logger {
	return &Logger{
		Logger: l.Logger.With("len", v.Len(), "ones", v.Ones()),
	}
}

// LogBuild logs the completion of a vector construction.
func (l *Logger) LogBuild(v *BitVector) {
	l.Info("bit vector built",
		"len", v.Len(),
		"ones", v.Ones(),
		"size_bytes", v.Size(),
	)
}

// LogSave logs a save operation.
func (l *Logger) LogSave(written int64, compression Compression, err error) {
	if err != nil {
		l.Error("save failed",
			"compression", compression.String(),
			"error", err,
		)
		return
	}
	l.Debug("bit vector saved",
		"bytes", written,
		"compression", compression.String(),
	)
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(read int64, err error) {
	if err != nil {
		l.Error("load failed",
			"bytes", read,
			"error", err,
		)
		return
	}
	l.Debug("bit vector loaded",
		"bytes", read,
	)
}
