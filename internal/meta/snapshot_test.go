package meta_test

import (
	"reflect"
	"testing"

	"lightbox/internal/meta"
)

func entries(pairs ...any) meta.Snapshot {
	var s meta.Snapshot
	for i := 0; i < len(pairs); i += 2 {
		s = append(s, meta.Entry{KeyID: uint32(pairs[i].(int)), Value: pairs[i+1].(string)})
	}
	return s
}

func TestReduceIdempotent(t *testing.T) {
	cases := []struct {
		name     string
		snapshot meta.Snapshot
	}{
		{"empty", nil},
		{"single", entries(7, "Hello")},
		{"several", entries(1, "a", 2, "b", 3, "c")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delta := meta.Reduce(tc.snapshot, tc.snapshot)
			if !delta.Empty() {
				t.Fatalf("expected empty delta, got %+v", delta)
			}
		})
	}
}

func TestReduceNewKey(t *testing.T) {
	delta := meta.Reduce(nil, entries(7, "Hello"))
	if len(delta.Remove) != 0 {
		t.Fatalf("unexpected removals: %v", delta.Remove)
	}
	if !reflect.DeepEqual(delta.Add, []meta.Entry{{KeyID: 7, Value: "Hello"}}) {
		t.Fatalf("unexpected additions: %+v", delta.Add)
	}
}

func TestReduceChangedValue(t *testing.T) {
	delta := meta.Reduce(entries(7, "Hello"), entries(7, "World"))
	if !reflect.DeepEqual(delta.Remove, []uint32{7}) {
		t.Fatalf("expected key 7 removed, got %v", delta.Remove)
	}
	if !reflect.DeepEqual(delta.Add, []meta.Entry{{KeyID: 7, Value: "World"}}) {
		t.Fatalf("unexpected additions: %+v", delta.Add)
	}
}

func TestReduceEmptyValueIsDelete(t *testing.T) {
	delta := meta.Reduce(entries(7, "Hello"), entries(7, ""))
	if !reflect.DeepEqual(delta.Remove, []uint32{7}) {
		t.Fatalf("expected key 7 removed, got %v", delta.Remove)
	}
	if len(delta.Add) != 0 {
		t.Fatalf("empty values must never be inserted, got %+v", delta.Add)
	}
}

func TestReduceDropsAbsentKeys(t *testing.T) {
	delta := meta.Reduce(entries(1, "a", 2, "b"), entries(2, "b"))
	if !reflect.DeepEqual(delta.Remove, []uint32{1}) {
		t.Fatalf("expected key 1 removed, got %v", delta.Remove)
	}
	if len(delta.Add) != 0 {
		t.Fatalf("unexpected additions: %+v", delta.Add)
	}
}

func TestMergeAppendsAndReplacesInPlace(t *testing.T) {
	working := entries(1, "a", 2, "b")
	merged := meta.Merge(working, entries(2, "B", 3, "c"))

	want := entries(1, "a", 2, "B", 3, "c")
	if !reflect.DeepEqual(merged, want) {
		t.Fatalf("merge result mismatch:\n got %+v\nwant %+v", merged, want)
	}
	// The input must stay untouched.
	if !reflect.DeepEqual(working, entries(1, "a", 2, "b")) {
		t.Fatalf("merge mutated its input: %+v", working)
	}
}

func TestMergeStability(t *testing.T) {
	proposed := entries(1, "x", 4, "y")
	once := meta.Merge(entries(1, "a", 2, "b"), proposed)
	twice := meta.Merge(once, proposed)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second merge changed the snapshot:\n once %+v\ntwice %+v", once, twice)
	}
	if delta := meta.Reduce(once, twice); !delta.Empty() {
		t.Fatalf("second application must reduce to an empty delta, got %+v", delta)
	}
}

func TestMergeEmptyProposedIsNoop(t *testing.T) {
	working := entries(1, "a")
	if merged := meta.Merge(working, nil); !reflect.DeepEqual(merged, working) {
		t.Fatalf("empty proposed changed snapshot: %+v", merged)
	}
}

func TestRemoveKeys(t *testing.T) {
	working := entries(1, "a", 2, "b", 3, "c")
	got := meta.RemoveKeys(working, []uint32{2, 9})

	want := entries(1, "a", 3, "c")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("remove result mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSetWithEmptyProposedClearsEverything(t *testing.T) {
	before := entries(1, "a", 2, "b")
	delta := meta.Reduce(before, nil)
	if !reflect.DeepEqual(delta.Remove, []uint32{1, 2}) {
		t.Fatalf("expected all keys removed, got %v", delta.Remove)
	}
	if len(delta.Add) != 0 {
		t.Fatalf("unexpected additions: %+v", delta.Add)
	}
}

func TestCleanValue(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Hello  ", "Hello"},
		{"Hello", "Hello"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := meta.CleanValue(tc.in); got != tc.want {
			t.Fatalf("CleanValue(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
