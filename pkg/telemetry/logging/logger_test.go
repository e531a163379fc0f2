package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/europa/pkg/config"
)

func newTestLogger(t *testing.T, level, format string) (*Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger, err := New(&config.LoggingConfig{Level: level, Format: format}, &buf)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger, &buf
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(&config.LoggingConfig{Level: "loud", Format: "json"}, nil); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New(&config.LoggingConfig{Level: "info", Format: "yaml"}, nil); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	logger, buf := newTestLogger(t, "info", "json")

	logger.Info("request completed", "status", 200)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "request completed" {
		t.Errorf("expected msg %q, got %v", "request completed", entry["msg"])
	}
	if entry["status"] != float64(200) {
		t.Errorf("expected status 200, got %v", entry["status"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(t, "warn", "text")

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info suppressed, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("expected warn emitted, got %q", out)
	}
}

func TestLogger_ContextEnrichment(t *testing.T) {
	logger, buf := newTestLogger(t, "debug", "json")

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithOperation(ctx, "GET /orders")

	logger.DebugContext(ctx, "span registered")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id %q, got %v", "req-123", entry["request_id"])
	}
	if entry["operation"] != "GET /orders" {
		t.Errorf("expected operation %q, got %v", "GET /orders", entry["operation"])
	}
}

func TestLogger_With(t *testing.T) {
	logger, buf := newTestLogger(t, "info", "json")

	logger.With("component", "filter").Info("started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["component"] != "filter" {
		t.Errorf("expected component field, got %v", entry)
	}
}
