package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"fitroom/internal/logging"
)

func TestComponentLevel(t *testing.T) {
	overrides := map[string]string{
		"Workflow": "debug",
		"cleanup":  "error",
	}

	level, ok := logging.ComponentLevel(overrides, "workflow")
	if !ok || level != slog.LevelDebug {
		t.Fatalf("expected debug override for workflow, got %v (ok=%v)", level, ok)
	}

	level, ok = logging.ComponentLevel(overrides, "CLEANUP")
	if !ok || level != slog.LevelError {
		t.Fatalf("expected error override for cleanup, got %v (ok=%v)", level, ok)
	}

	if _, ok := logging.ComponentLevel(overrides, "api"); ok {
		t.Fatal("expected no override for api")
	}
	if _, ok := logging.ComponentLevel(nil, "workflow"); ok {
		t.Fatal("expected no override with empty map")
	}
}

func TestNewComponentLoggerWithOverrides(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	quiet := logging.NewComponentLoggerWithOverrides(base, "cleanup", map[string]string{"cleanup": "error"})
	quiet.Info("swept nothing")
	quiet.Error("sweep failed")

	output := buf.String()
	if strings.Contains(output, "swept nothing") {
		t.Fatalf("expected info to be suppressed, got %q", output)
	}
	if !strings.Contains(output, "sweep failed") {
		t.Fatalf("expected error to pass through, got %q", output)
	}
	if !strings.Contains(output, "component=cleanup") {
		t.Fatalf("expected component attribute, got %q", output)
	}
}
