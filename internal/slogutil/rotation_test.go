package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"facettes/internal/config"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"", 0},
		{"invalid", 0},
		{"-5MB", 0},
		{"100", 100},
		{"100b", 100},
		{"1kb", 1024},
		{"10KB", 10240},
		{"10MB", 10 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"1.5MB", int64(1.5 * 1024 * 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}

	line := []byte(strings.Repeat("a", 29) + "\n")
	for i := 0; i < 6; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backups beyond maxBackups should not be kept")
	}
}

func TestRotatingFile_NoBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	rf, err := OpenRotatingFile(path, 20, 0)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}
	defer rf.Close()

	_, _ = rf.Write([]byte("0123456789abcdef\n"))
	_, _ = rf.Write([]byte("second\n"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("file content = %q, want only the last line", data)
	}
}

func TestNewFileLoggerWithRotation(t *testing.T) {
	dir := t.TempDir()

	for _, size := range []string{"1MB", ""} {
		path := filepath.Join(dir, "size-"+size+".log")
		logger, closer, err := NewFileLoggerWithRotation(path, slog.LevelDebug, size, 3)
		if err != nil {
			t.Fatalf("NewFileLoggerWithRotation(%q) failed: %v", size, err)
		}
		logger.Info("hello")
		_ = closer.Close()

		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "hello") {
			t.Errorf("maxSize %q: log file missing record, got %q", size, data)
		}
	}
}

func TestLoggerFactory_CLILogger(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "debug"

	factory := NewLoggerFactory(dir, cfg, slog.LevelWarn)
	var console bytes.Buffer
	logger := factory.CLILogger(&console)

	logger.Debug("cache miss", "key", "semrush:fr:robe femme")
	logger.Warn("provider failed")
	if err := factory.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if strings.Contains(console.String(), "cache miss") {
		t.Error("console should filter below the CLI level")
	}
	if !strings.Contains(console.String(), "provider failed") {
		t.Error("console should contain warnings")
	}

	data, err := os.ReadFile(factory.LogPath())
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "cache miss") {
		t.Error("file should honour logging.level")
	}
}

func TestLoggerFactory_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.File = ""

	factory := NewLoggerFactory(t.TempDir(), cfg, slog.LevelInfo)
	if factory.LogPath() != "" {
		t.Errorf("LogPath() = %q, want empty", factory.LogPath())
	}

	var console bytes.Buffer
	factory.CLILogger(&console).Info("ok")
	if !strings.Contains(console.String(), "ok") {
		t.Error("console logger should still work without a file")
	}
}
