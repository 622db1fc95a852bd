package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality for one named component.
type Logger struct {
	name    string
	handler slog.Handler
	logger  *slog.Logger
	exit    func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger writing to stdout at the given level.
func NewLogger(level string, name string) *Logger {
	return New(os.Stdout, level, name)
}

// -----------------------------------------------------------------------------

// New creates a Logger writing text records to w.
func New(w io.Writer, level string, name string) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return &Logger{
		name:    name,
		handler: handler,
		logger:  slog.New(handler).With("component", name),
		exit:    os.Exit,
	}
}

// -----------------------------------------------------------------------------

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return New(io.Discard, "error", "discard")
}

// -----------------------------------------------------------------------------

// Named returns a Logger for another component sharing the same output.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:    name,
		handler: l.handler,
		logger:  slog.New(l.handler).With("component", name),
		exit:    l.exit,
	}
}

// -----------------------------------------------------------------------------

// ParseLevel converts string (debug|info|warn|error) to slog.Level. Unknown → info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "critical", true)
	l.exit(1)
}
