package slicescan

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/slicescan/model"
)

// Logger wraps slog.Logger with scan-specific helpers.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithScan adds a scan id field to the logger.
func (l *Logger) WithScan(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("scan", id),
	}
}

// WithOperator adds an operator id field to the logger.
func (l *Logger) WithOperator(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("operator", id),
	}
}

// WithSlice adds a slice field to the logger.
func (l *Logger) WithSlice(s model.Slice) *Logger {
	return &Logger{
		Logger: l.Logger.With("slice", s.String(), "shard", s.ShardID),
	}
}

// LogScanStarted logs the schedule of a scan.
func (l *Logger) LogScanStarted(ctx context.Context, shards, slices, parallelism int) {
	l.InfoContext(ctx, "scan started",
		"shards", shards,
		"slices", slices,
		"parallelism", parallelism,
	)
}

// LogScan logs the outcome of a scan.
func (l *Logger) LogScan(ctx context.Context, r Report, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"slices", len(r.Slices),
			"failed", r.Failed,
			"cancelled", r.Cancelled,
			"duration", r.Duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "scan completed",
			"slices", len(r.Slices),
			"pages", r.Summary.PagesEmitted(),
			"rows", r.Rows,
			"duration", r.Duration,
		)
	}
}

// LogOperator logs the outcome of a single operator.
func (l *Logger) LogOperator(ctx context.Context, r OperatorReport) {
	if r.Err != nil && !IsCancelled(r.Err) {
		l.WarnContext(ctx, "operator failed",
			"operator", r.ID,
			"slice", r.Slice.String(),
			"state", r.State.String(),
			"error", r.Err,
		)
	} else {
		l.DebugContext(ctx, "operator finished",
			"operator", r.ID,
			"slice", r.Slice.String(),
			"state", r.State.String(),
			"pages", r.Pages,
		)
	}
}

// LogArchive logs an archive flush.
func (l *Logger) LogArchive(ctx context.Context, key string, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "archive flush failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "archive flushed",
			"key", key,
			"duration", d,
		)
	}
}
