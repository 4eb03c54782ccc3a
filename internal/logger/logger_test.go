package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "notes", "debug", "json")

	log.WithField("nid", 7).Debug("imported")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "imported" {
		t.Errorf("expected message field, got %v", entry["message"])
	}
	if entry["service"] != "notes" {
		t.Errorf("expected service field, got %v", entry["service"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestNewWithOutput_LevelFallback(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "notes", "loud", "text")

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line should be filtered at the default info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("expected info line")
	}
}
