package undo_test

import (
	"context"
	"errors"
	"testing"

	"lightbox/internal/undo"
)

// cellChange flips a cell between two values; inverting swaps them.
type cellChange struct {
	cell     *string
	from, to string
}

func (c *cellChange) Apply(context.Context) error {
	*c.cell = c.to
	return nil
}

func (c *cellChange) Invert() undo.Change {
	return &cellChange{cell: c.cell, from: c.to, to: c.from}
}

func record(h *undo.History, label string, changes ...undo.Change) {
	group := undo.NewGroup(label)
	for _, c := range changes {
		group.Add(c)
	}
	h.Record(group)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ctx := context.Background()
	cell := "old"
	h := undo.NewHistory(10)

	change := &cellChange{cell: &cell, from: "old", to: "new"}
	if err := change.Apply(ctx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	record(h, "edit cell", change)

	label, err := h.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if label != "edit cell" {
		t.Fatalf("unexpected label %q", label)
	}
	if cell != "old" {
		t.Fatalf("undo did not restore value, got %q", cell)
	}

	if _, err := h.Redo(ctx); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if cell != "new" {
		t.Fatalf("redo did not reapply value, got %q", cell)
	}
}

func TestUndoAppliesGroupInReverseOrder(t *testing.T) {
	ctx := context.Background()
	cell := "a"
	h := undo.NewHistory(10)

	first := &cellChange{cell: &cell, from: "a", to: "b"}
	second := &cellChange{cell: &cell, from: "b", to: "c"}
	_ = first.Apply(ctx)
	_ = second.Apply(ctx)
	record(h, "two steps", first, second)

	if _, err := h.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if cell != "a" {
		t.Fatalf("expected original value after undo, got %q", cell)
	}
}

func TestEmptyStacks(t *testing.T) {
	ctx := context.Background()
	h := undo.NewHistory(5)

	if _, err := h.Undo(ctx); !errors.Is(err, undo.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if _, err := h.Redo(ctx); !errors.Is(err, undo.ErrNothingToRedo) {
		t.Fatalf("expected ErrNothingToRedo, got %v", err)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("empty history reports undoable work")
	}
}

func TestEmptyGroupsAreDropped(t *testing.T) {
	h := undo.NewHistory(5)
	h.Record(undo.NewGroup("nothing happened"))
	h.Record(nil)
	if h.CanUndo() {
		t.Fatal("empty group must not be recorded")
	}
}

func TestRetentionEvictsOldest(t *testing.T) {
	ctx := context.Background()
	cell := "0"
	h := undo.NewHistory(2)

	for _, to := range []string{"1", "2", "3"} {
		change := &cellChange{cell: &cell, from: cell, to: to}
		_ = change.Apply(ctx)
		record(h, "edit to "+to, change)
	}

	undoLabels, _ := h.Labels()
	if len(undoLabels) != 2 {
		t.Fatalf("expected 2 retained groups, got %d", len(undoLabels))
	}
	if undoLabels[0] != "edit to 2" || undoLabels[1] != "edit to 3" {
		t.Fatalf("unexpected retained labels: %v", undoLabels)
	}
}

func TestNewRecordClearsRedo(t *testing.T) {
	ctx := context.Background()
	cell := "a"
	h := undo.NewHistory(10)

	first := &cellChange{cell: &cell, from: "a", to: "b"}
	_ = first.Apply(ctx)
	record(h, "first", first)

	if _, err := h.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !h.CanRedo() {
		t.Fatal("expected redoable group")
	}

	second := &cellChange{cell: &cell, from: "a", to: "z"}
	_ = second.Apply(ctx)
	record(h, "second", second)

	if h.CanRedo() {
		t.Fatal("recording a new group must clear the redo stack")
	}
}
