package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNew_DefaultLevel(t *testing.T) {
	logger := New("", "text")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("default logger should log at info")
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger should not log at debug")
	}
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := New(tt.level, "json")
			if !logger.Enabled(context.Background(), tt.enabled) {
				t.Errorf("level %q should enable %v", tt.level, tt.enabled)
			}
			if logger.Enabled(context.Background(), tt.muted) {
				t.Errorf("level %q should mute %v", tt.level, tt.muted)
			}
		})
	}
}

func TestWithCallID_And_CallID(t *testing.T) {
	ctx := context.Background()

	if got := CallID(ctx); got != "" {
		t.Errorf("empty context should have no call ID, got %q", got)
	}

	ctx = WithCallID(ctx, "call_abc123")
	if got := CallID(ctx); got != "call_abc123" {
		t.Errorf("CallID = %q, want call_abc123", got)
	}
}

func TestWithLogger_And_FromContext(t *testing.T) {
	ctx := context.Background()

	if got := FromContext(ctx); got != slog.Default() {
		t.Error("empty context should return the default logger")
	}

	custom := New("debug", "json")
	ctx = WithLogger(ctx, custom)
	if got := FromContext(ctx); got != custom {
		t.Error("FromContext should return the stored logger")
	}
}

func TestL_AnnotatesCallID(t *testing.T) {
	ctx := WithLogger(context.Background(), New("info", "text"))

	// Without a call ID, L returns the stored logger unchanged.
	if got := L(ctx); got != FromContext(ctx) {
		t.Error("L without a call ID should return the context logger")
	}

	// With a call ID, L returns a derived logger.
	ctx = WithCallID(ctx, "call_xyz")
	if got := L(ctx); got == FromContext(ctx) {
		t.Error("L with a call ID should derive a new logger")
	}
}
