// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerJSON(t *testing.T) {
	var buffer bytes.Buffer
	logger := newLogger(&buffer, slog.LevelInfo, false)
	logger.Debug("hidden")
	logger.Info("directory processed", "processed", 3)

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), buffer.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "directory processed" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["processed"] != float64(3) {
		t.Errorf("processed = %v, want 3", record["processed"])
	}
}

func TestNewLoggerText(t *testing.T) {
	var buffer bytes.Buffer
	logger := newLogger(&buffer, slog.LevelDebug, true)
	logger.Debug("listed directory", "files", 2)
	if !strings.Contains(buffer.String(), "msg=\"listed directory\" files=2") {
		t.Errorf("text output = %q", buffer.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseLevel(test.name)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", test.name, err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", test.name, got, test.want)
			}
		})
	}
}
