package meta

import "strings"

// Entry is one attribute value on a record.
type Entry struct {
	KeyID uint32
	Value string
}

// Snapshot is a record's attribute state. Entry order is preserved for diff
// stability; the merge rules keep at most one entry per key.
type Snapshot []Entry

func (s Snapshot) indexOf(key uint32) int {
	for i, e := range s {
		if e.KeyID == key {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// Merge folds proposed entries into working: the first entry matching a
// proposed key has its value replaced in place, new keys are appended, equal
// values are left untouched.
func Merge(working, proposed Snapshot) Snapshot {
	out := working.Clone()
	for _, p := range proposed {
		if i := out.indexOf(p.KeyID); i >= 0 {
			if out[i].Value != p.Value {
				out[i].Value = p.Value
			}
		} else {
			out = append(out, p)
		}
	}
	return out
}

// RemoveKeys drops the first entry matching each named key, if present.
func RemoveKeys(working Snapshot, keys []uint32) Snapshot {
	out := working.Clone()
	for _, key := range keys {
		if i := out.indexOf(key); i >= 0 {
			out = append(out[:i], out[i+1:]...)
		}
	}
	return out
}

// Delta is the minimal persisted change between two snapshots.
type Delta struct {
	Remove []uint32
	Add    []Entry
}

// Empty reports whether applying the delta would change nothing.
func (d Delta) Empty() bool {
	return len(d.Remove) == 0 && len(d.Add) == 0
}

// Reduce computes the minimal delta turning before into after. The same
// reduction drives forward application and undo replay. An empty value is
// policy-equivalent to deletion: it schedules a removal and is never
// inserted.
func Reduce(before, after Snapshot) Delta {
	var delta Delta
	for _, b := range before {
		i := after.indexOf(b.KeyID)
		if i < 0 || after[i].Value != b.Value || after[i].Value == "" {
			delta.Remove = append(delta.Remove, b.KeyID)
		}
	}
	for _, a := range after {
		if a.Value == "" {
			continue
		}
		i := before.indexOf(a.KeyID)
		if i < 0 || before[i].Value != a.Value {
			delta.Add = append(delta.Add, a)
		}
	}
	return delta
}

// CleanValue normalizes a caller-supplied value before it enters the diff
// engine. Surrounding whitespace is never persisted.
func CleanValue(value string) string {
	return strings.TrimSpace(value)
}
