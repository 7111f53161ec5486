package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lessonlab/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")

	cleanup, err := Init(&config.LogConfig{Path: path, Level: "DEBUG"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Debug("unit test line", "marker", "xyzzy")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "xyzzy") {
		t.Errorf("expected log file to contain debug marker, got: %s", data)
	}
}

func TestInitRotatesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cleanup, err := Init(&config.LogConfig{Path: path, Level: "INFO"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cleanup()

	old, err := os.ReadFile(path + ".old")
	if err != nil {
		t.Fatalf("expected rotated .old file: %v", err)
	}
	if !strings.Contains(string(old), "previous run") {
		t.Errorf("rotated file missing previous contents: %s", old)
	}
}
