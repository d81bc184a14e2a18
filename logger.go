package clustr

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with clustering-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithK adds a k (center count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithShape adds the point set shape to the logger.
func (l *Logger) WithShape(points, dimension int) *Logger {
	return &Logger{
		Logger: l.Logger.With("points", points, "dimension", dimension),
	}
}

// WithMetric adds a metric name field to the logger.
func (l *Logger) WithMetric(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("metric", name),
	}
}

// LogSeed logs a seeding run.
func (l *Logger) LogSeed(ctx context.Context, k int, seed int64, potential float64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "seeding failed",
			"k", k,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "seeding completed",
			"k", k,
			"seed", seed,
			"potential", potential,
			"duration", duration,
		)
	}
}

// LogRefine logs a refinement run.
func (l *Logger) LogRefine(ctx context.Context, iterations int, converged bool, cost float64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "refinement failed",
			"error", err,
		)
		return
	}
	if !converged {
		l.WarnContext(ctx, "refinement stopped at iteration limit",
			"iterations", iterations,
			"cost", cost,
			"duration", duration,
		)
		return
	}
	l.InfoContext(ctx, "refinement converged",
		"iterations", iterations,
		"cost", cost,
		"duration", duration,
	)
}

// LogAssign logs an assignment pass.
func (l *Logger) LogAssign(ctx context.Context, points, k int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "assignment failed",
			"points", points,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "assignment completed",
			"points", points,
			"k", k,
		)
	}
}

// LogCost logs a cost evaluation.
func (l *Logger) LogCost(ctx context.Context, cost float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cost evaluation failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cost evaluated",
			"cost", cost,
		)
	}
}
