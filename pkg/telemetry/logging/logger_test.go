package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_DefaultsToJSONInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("server started", "address", "127.0.0.1:8889")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "server started" {
		t.Errorf("Expected msg field, got %v", entry["msg"])
	}
	if entry["address"] != "127.0.0.1:8889" {
		t.Errorf("Expected address field, got %v", entry["address"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("Expected sub-warn entries to be filtered, got %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("Expected warn entry in output, got %q", out)
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("Expected text format output, got %q", buf.String())
	}
}

func TestNew_RejectsUnknownLevelAndFormat(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestWith_CarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	connLogger := logger.With("conn_id", "abc123")
	connLogger.Info("request completed")

	if !strings.Contains(buf.String(), "abc123") {
		t.Errorf("Expected conn_id field in output, got %q", buf.String())
	}
}
