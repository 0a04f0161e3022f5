package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // Defaults to info
		{"", slog.LevelInfo},        // Defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLevel(tt.level); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.level, got, tt.expected)
			}
		})
	}
}

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("dropped")
	log.Warn("kept", "surface", "text")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "kept" || record["surface"] != "text" {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestNopSkipsDebug(t *testing.T) {
	log := Nop()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled on the nop logger")
	}
	log.Error("discarded")
}

func TestNewRotatingFileWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	w := NewRotatingFile(path)

	NewWithWriter(w, "info").Info("to file")
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !bytes.Contains(data, []byte(`"msg":"to file"`)) {
		t.Errorf("log file missing record: %q", data)
	}
}
