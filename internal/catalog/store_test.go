package catalog_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"lightbox/internal/catalog"
	"lightbox/internal/testsupport"
)

func TestOpenCreatesAndReopensSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	record, err := store.AddRecord(ctx, "IMG_0001.CR2", "2026:05:01 10:00:00")
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	got, err := reopened.GetRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got == nil || got.Filename != "IMG_0001.CR2" {
		t.Fatalf("record did not survive reopen: %+v", got)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.DB().Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := catalog.Open(cfg); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenLocksOutSecondProcess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_ = testsupport.MustOpenStore(t, cfg)

	second, err := catalog.Open(cfg)
	if err == nil {
		second.Close()
		t.Fatal("second open succeeded while the catalog was locked")
	}
	if !strings.Contains(err.Error(), "locked") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSeededKeyCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	var count int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM key_catalog").Scan(&count); err != nil {
		t.Fatalf("count keys: %v", err)
	}
	if count != 8 {
		t.Fatalf("expected 8 seeded keys, got %d", count)
	}
}

func TestRecordLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.AddRecord(ctx, "", ""); err == nil {
		t.Fatal("empty filename must be rejected")
	}

	first := testsupport.AddRecord(t, store, "a.CR2", "2026:05:01 10:00:00")
	second := testsupport.AddRecord(t, store, "b.CR2", "")

	if first.CapturedAt != "2026:05:01 10:00:00" {
		t.Fatalf("captured_at not kept verbatim: %q", first.CapturedAt)
	}
	if first.Rating() != -1 {
		t.Fatalf("new record must be unrated, got %d", first.Rating())
	}

	records, err := store.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 || records[0].ID != first.ID || records[1].ID != second.ID {
		t.Fatalf("unexpected listing: %+v", records)
	}

	missing, err := store.GetRecord(ctx, 9999)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for absent record, got %+v", missing)
	}
}

func TestRating(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	record := testsupport.AddRecord(t, store, "a.CR2", "")

	if err := store.SetRating(ctx, record.ID, 6); err == nil {
		t.Fatal("rating above 5 must be rejected")
	}
	if err := store.SetRating(ctx, 9999, 3); err == nil {
		t.Fatal("rating an absent record must fail")
	}

	for _, stars := range []int{0, 3, 5} {
		if err := store.SetRating(ctx, record.ID, stars); err != nil {
			t.Fatalf("SetRating %d: %v", stars, err)
		}
		got, err := store.GetRecord(ctx, record.ID)
		if err != nil {
			t.Fatalf("GetRecord: %v", err)
		}
		if got.Rating() != stars {
			t.Fatalf("rating %d read back as %d", stars, got.Rating())
		}
	}

	// Negative clears the rating back to unrated.
	if err := store.SetRating(ctx, record.ID, -1); err != nil {
		t.Fatalf("clear rating: %v", err)
	}
	got, err := store.GetRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.Rating() != -1 {
		t.Fatalf("expected unrated, got %d", got.Rating())
	}
}

func TestTags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	record := testsupport.AddRecord(t, store, "a.CR2", "")

	for _, name := range []string{"mountains", "alps", "mountains"} {
		if err := store.Tag(ctx, record.ID, name); err != nil {
			t.Fatalf("Tag %s: %v", name, err)
		}
	}
	tags, err := store.TagsOf(ctx, record.ID)
	if err != nil {
		t.Fatalf("TagsOf: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"alps", "mountains"}) {
		t.Fatalf("unexpected tags: %v", tags)
	}

	if err := store.Untag(ctx, record.ID, "alps"); err != nil {
		t.Fatalf("Untag: %v", err)
	}
	tags, err = store.TagsOf(ctx, record.ID)
	if err != nil {
		t.Fatalf("TagsOf: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"mountains"}) {
		t.Fatalf("unexpected tags after untag: %v", tags)
	}
}

func TestColorLabels(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	record := testsupport.AddRecord(t, store, "a.CR2", "")

	if err := store.SetColorLabel(ctx, record.ID, 5); err == nil {
		t.Fatal("label above 4 must be rejected")
	}
	if err := store.SetColorLabel(ctx, record.ID, 2); err != nil {
		t.Fatalf("SetColorLabel: %v", err)
	}
	// Duplicate attaches are ignored.
	if err := store.SetColorLabel(ctx, record.ID, 2); err != nil {
		t.Fatalf("SetColorLabel repeat: %v", err)
	}

	var count int
	if err := store.DB().QueryRow(
		"SELECT COUNT(*) FROM color_labels WHERE record_id = ?", record.ID,
	).Scan(&count); err != nil {
		t.Fatalf("count labels: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 label row, got %d", count)
	}

	if err := store.RemoveColorLabel(ctx, record.ID, 2); err != nil {
		t.Fatalf("RemoveColorLabel: %v", err)
	}
}

func TestSelection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	first := testsupport.AddRecord(t, store, "a.CR2", "")
	second := testsupport.AddRecord(t, store, "b.CR2", "")

	if err := store.Select(ctx, second.ID, first.ID, first.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	ids, err := store.SelectedRecords(ctx)
	if err != nil {
		t.Fatalf("SelectedRecords: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{first.ID, second.ID}) {
		t.Fatalf("selection not ordered by id: %v", ids)
	}

	if err := store.Deselect(ctx, first.ID); err != nil {
		t.Fatalf("Deselect: %v", err)
	}
	ids, err = store.SelectedRecords(ctx)
	if err != nil {
		t.Fatalf("SelectedRecords: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{second.ID}) {
		t.Fatalf("unexpected selection: %v", ids)
	}

	if err := store.ClearSelection(ctx); err != nil {
		t.Fatalf("ClearSelection: %v", err)
	}
	ids, err = store.SelectedRecords(ctx)
	if err != nil {
		t.Fatalf("SelectedRecords: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("selection not cleared: %v", ids)
	}
}

func TestSettings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, ok, err := store.Setting(ctx, "ui/theme"); err != nil || ok {
		t.Fatalf("expected missing setting, ok=%v err=%v", ok, err)
	}

	if err := store.SetSettingDefault(ctx, "ui/theme", "dark"); err != nil {
		t.Fatalf("SetSettingDefault: %v", err)
	}
	// A default never overwrites.
	if err := store.SetSettingDefault(ctx, "ui/theme", "light"); err != nil {
		t.Fatalf("SetSettingDefault: %v", err)
	}
	value, ok, err := store.Setting(ctx, "ui/theme")
	if err != nil || !ok || value != "dark" {
		t.Fatalf("expected dark, got %q ok=%v err=%v", value, ok, err)
	}

	// An explicit write does.
	if err := store.SetSetting(ctx, "ui/theme", "light"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	value, _, err = store.Setting(ctx, "ui/theme")
	if err != nil || value != "light" {
		t.Fatalf("expected light, got %q err=%v", value, err)
	}
}
