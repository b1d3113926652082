// Package logging provides a tiny abstraction over slog so the client can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. A contextual RunLogger adds client/run scoped attributes
// for engine internals.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger defines the minimal logging interface used throughout agentbridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NewJSONLogger creates a Logger writing JSON records to w at the given level.
func NewJSONLogger(w io.Writer, level slog.Level) Logger {
	if w == nil {
		w = os.Stdout
	}
	return NewSlogAdapter(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// NewTextLogger creates a Logger writing human-readable records to w.
func NewTextLogger(w io.Writer, level slog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// RunLogger decorates a Logger with fixed contextual attributes (component,
// session id, run id). It is cheap to copy via the With* helpers.
type RunLogger struct {
	logger Logger
	attrs  []any
}

// NewRunLogger wraps logger, substituting NoOpLogger when nil.
func NewRunLogger(logger Logger) *RunLogger {
	if logger == nil {
		logger = NoOpLogger{}
	}
	return &RunLogger{logger: logger}
}

// WithComponent returns a copy scoped to a logical component.
func (l *RunLogger) WithComponent(name string) *RunLogger {
	return l.with("component", name)
}

// WithSession returns a copy scoped to a session id.
func (l *RunLogger) WithSession(sessionID string) *RunLogger {
	return l.with("session_id", sessionID)
}

// WithRun returns a copy scoped to a run id.
func (l *RunLogger) WithRun(runID string) *RunLogger {
	return l.with("run_id", runID)
}

func (l *RunLogger) with(key string, value any) *RunLogger {
	attrs := make([]any, 0, len(l.attrs)+2)
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, key, value)
	return &RunLogger{logger: l.logger, attrs: attrs}
}

func (l *RunLogger) merge(args []any) []any {
	if len(l.attrs) == 0 {
		return args
	}
	out := make([]any, 0, len(l.attrs)+len(args))
	out = append(out, l.attrs...)
	out = append(out, args...)
	return out
}

// Debug logs a debug message with the contextual attributes.
func (l *RunLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, l.merge(args)...) }

// Info logs an informational message with the contextual attributes.
func (l *RunLogger) Info(msg string, args ...any) { l.logger.Info(msg, l.merge(args)...) }

// Warn logs a warning message with the contextual attributes.
func (l *RunLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, l.merge(args)...) }

// Error logs an error message with the contextual attributes.
func (l *RunLogger) Error(msg string, args ...any) { l.logger.Error(msg, l.merge(args)...) }
