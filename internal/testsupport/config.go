package testsupport

import (
	"path/filepath"
	"testing"

	"lightbox/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.Path = filepath.Join(base, "data", "catalog.db")
	cfg.Catalog.UndoDepth = 10

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithUndoDepth overrides the undo retention limit on the test config.
func WithUndoDepth(depth int) ConfigOption {
	return func(c *config.Config) {
		c.Catalog.UndoDepth = depth
	}
}
