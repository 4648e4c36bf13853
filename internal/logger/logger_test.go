package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, err := New(Options{JSON: true, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("batch completed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	if !strings.Contains(string(data), `"step":"batch completed"`) {
		t.Fatalf("expected json entry with step key, got %q", data)
	}
}

func TestNewDebugLevel(t *testing.T) {
	logger, err := New(Options{Debug: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}

	logger, err = New(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be disabled by default")
	}
}
