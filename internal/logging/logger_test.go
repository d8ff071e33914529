package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lightbox/internal/config"
	"lightbox/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	logger.Info("hello", logging.Args(logging.String("k", "v"))...)

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "lightbox.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"k":"v"`) {
		t.Fatalf("log file missing structured attr: %s", data)
	}
}

func TestComponentLoggerNilBase(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "registry")
	// Must not panic and must swallow output.
	logger.Info("discarded")
}
