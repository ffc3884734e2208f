// Package logging provides structured logging for the toolkit.
//
// Logs always go to stderr: when the MCP server runs in stdio mode,
// stdout is the JSON-RPC channel and must stay clean.
package logging

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

const (
	callIDKey contextKey = "call_id"
	loggerKey contextKey = "logger"
)

// New creates a structured logger at the given level. format "json"
// selects JSON output; anything else selects text.
func New(level string, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// WithCallID tags the context with a tool-call ID.
func WithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, callIDKey, callID)
}

// CallID extracts the tool-call ID from context.
func CallID(ctx context.Context) string {
	if id, ok := ctx.Value(callIDKey).(string); ok {
		return id
	}
	return ""
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// L returns the context's logger, annotated with the tool-call ID when
// one is present.
func L(ctx context.Context) *slog.Logger {
	logger := FromContext(ctx)
	if id := CallID(ctx); id != "" {
		return logger.With("call_id", id)
	}
	return logger
}
