package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initializing must be safe.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerJSONFields(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	Get().Info(ctx, "profile registered",
		String("player_id", "p1"),
		Int("count", 3),
		Float64("rating", 1212),
		Bool("new", true),
		Error(errors.New("boom")),
	)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["message"] != "profile registered" {
		t.Errorf("unexpected message: %v", line["message"])
	}
	if line["player_id"] != "p1" {
		t.Errorf("missing player_id field: %v", line)
	}
	if line["request_id"] != "req-1" {
		t.Errorf("missing request_id field: %v", line)
	}
	if line["error"] != "boom" {
		t.Errorf("missing error field: %v", line)
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	namedLogger := Named("engine").Named("rebuild")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")

	if !strings.Contains(buf.String(), `"logger":"engine.rebuild"`) {
		t.Errorf("expected dotted logger name, got %q", buf.String())
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	defer func() { _ = SetLevelString("info") }()

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Errorf("info line should be filtered at warn level, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSetFormat(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = SetFormat("json") }()

	if err := SetFormat("console"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SetFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
