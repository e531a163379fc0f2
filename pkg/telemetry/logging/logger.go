package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"mercator-hq/europa/pkg/config"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in plain text format.
	FormatText LogFormat = "text"
)

// Logger provides structured logging with automatic trace correlation.
// Log entries emitted through the context-aware methods carry the request ID,
// trace ID, and span ID found in the context.
type Logger struct {
	slog   *slog.Logger
	level  slog.Level
	format LogFormat
}

// New creates a new Logger from the logging configuration.
// The writer defaults to os.Stdout when nil.
func New(cfg *config.LoggingConfig, w io.Writer) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		slog:   slog.New(handler),
		level:  level,
		format: format,
	}, nil
}

// Default returns a Logger wrapping the process-wide slog default handler.
// It is used by components whose callers did not supply a logger.
func Default() *Logger {
	return &Logger{
		slog:   slog.Default(),
		level:  slog.LevelInfo,
		format: FormatText,
	}
}

// parseLevel converts a level string to a slog.Level.
func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q (valid: debug, info, warn, error)", s)
	}
}

// parseFormat converts a format string to a LogFormat.
func parseFormat(s string) (LogFormat, error) {
	switch s {
	case "json", "":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: json, text)", s)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// DebugContext logs a debug message enriched with fields from the context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Debug(msg, args...)
}

// InfoContext logs an info message enriched with fields from the context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Info(msg, args...)
}

// WarnContext logs a warning message enriched with fields from the context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Warn(msg, args...)
}

// ErrorContext logs an error message enriched with fields from the context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Error(msg, args...)
}

// With returns a logger with additional persistent fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		level:  l.level,
		format: l.format,
	}
}

// Slog returns the underlying slog.Logger for libraries that expect one.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// withContext returns the underlying logger enriched with context fields.
func (l *Logger) withContext(ctx context.Context) *slog.Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l.slog
	}
	return l.slog.With(fields...)
}
