package testsupport

import (
	"context"
	"testing"

	"lightbox/internal/catalog"
	"lightbox/internal/config"
	"lightbox/internal/logging"
	"lightbox/internal/meta"
	"lightbox/internal/undo"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewMetaService builds the full metadata stack on top of a store: a loaded
// registry, an undo history, and the mutation service.
func NewMetaService(t testing.TB, cfg *config.Config, store *catalog.Store) *meta.Service {
	t.Helper()

	registry := meta.NewRegistry(store.DB(), store, logging.NewNop())
	if err := registry.Load(context.Background()); err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	history := undo.NewHistory(cfg.Catalog.UndoDepth)
	return meta.NewService(store.DB(), registry, store, history, logging.NewNop())
}

// AddRecord creates a record for tests using the provided store.
func AddRecord(t testing.TB, store *catalog.Store, filename, capturedAt string) *catalog.Record {
	t.Helper()

	record, err := store.AddRecord(context.Background(), filename, capturedAt)
	if err != nil {
		t.Fatalf("store.AddRecord: %v", err)
	}
	return record
}
