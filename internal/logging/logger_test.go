package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Level != slog.LevelInfo {
		t.Errorf("Default level = %v, want %v", opts.Level, slog.LevelInfo)
	}
	if opts.FilePath != "" {
		t.Errorf("Default FilePath = %q, want empty", opts.FilePath)
	}
	if !opts.Console {
		t.Error("Default Console = false, want true")
	}
}

func TestNewLoggerConsoleOnly(t *testing.T) {
	logger, err := NewLogger(Options{Level: slog.LevelInfo, Console: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger returned nil logger")
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "scrape.log")

	logger, err := NewLogger(Options{
		Level:      slog.LevelDebug,
		FilePath:   logFile,
		MaxSizeMB:  1,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("batch complete", "batch", 1, "records", 10)

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "batch complete") {
		t.Errorf("Log file missing message, got: %s", content)
	}
}
