package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Change is a reversible unit of work. Invert returns a change that restores
// whatever state this change replaced; replay always applies forward and
// never branches on a direction flag.
type Change interface {
	Apply(ctx context.Context) error
	Invert() Change
}

// Group collects the changes of one logical edit so they undo together.
type Group struct {
	ID      uuid.UUID
	Label   string
	changes []Change
}

// NewGroup opens a new edit group.
func NewGroup(label string) *Group {
	return &Group{ID: uuid.New(), Label: label}
}

// Add appends a change to the group.
func (g *Group) Add(change Change) {
	g.changes = append(g.changes, change)
}

// Empty reports whether the group recorded no changes.
func (g *Group) Empty() bool {
	return len(g.changes) == 0
}

// Size returns the number of recorded changes.
func (g *Group) Size() int {
	return len(g.changes)
}

// ErrNothingToUndo is returned when the undo stack is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo is returned when the redo stack is empty.
var ErrNothingToRedo = errors.New("nothing to redo")

// History is a bounded ledger of edit groups with undo/redo stacks. It is
// safe for concurrent use.
type History struct {
	mu    sync.Mutex
	limit int
	undo  []*Group
	redo  []*Group
}

// NewHistory creates a history retaining at most limit undoable groups.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Record pushes a completed group onto the undo stack. Redoable groups are
// discarded and groups beyond the retention limit are evicted oldest-first.
// Empty groups are dropped.
func (h *History) Record(group *Group) {
	if group == nil || group.Empty() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, group)
	h.redo = nil
	if len(h.undo) > h.limit {
		h.undo = append([]*Group(nil), h.undo[len(h.undo)-h.limit:]...)
	}
}

// Undo reverts the most recent group by applying the inverse of each change
// in reverse order, then makes the group redoable. On failure the group
// stays on the undo stack so the caller can retry.
func (h *History) Undo(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return "", ErrNothingToUndo
	}
	group := h.undo[len(h.undo)-1]
	for i := len(group.changes) - 1; i >= 0; i-- {
		if err := group.changes[i].Invert().Apply(ctx); err != nil {
			return group.Label, fmt.Errorf("undo %q: %w", group.Label, err)
		}
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, group)
	return group.Label, nil
}

// Redo reapplies the most recently undone group in its original order.
func (h *History) Redo(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return "", ErrNothingToRedo
	}
	group := h.redo[len(h.redo)-1]
	for _, change := range group.changes {
		if err := change.Apply(ctx); err != nil {
			return group.Label, fmt.Errorf("redo %q: %w", group.Label, err)
		}
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, group)
	return group.Label, nil
}

// CanUndo reports whether an undoable group exists.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a redoable group exists.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Labels returns the labels of both stacks, oldest first.
func (h *History) Labels() (undoLabels, redoLabels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, g := range h.undo {
		undoLabels = append(undoLabels, g.Label)
	}
	for _, g := range h.redo {
		redoLabels = append(redoLabels, g.Label)
	}
	return undoLabels, redoLabels
}
