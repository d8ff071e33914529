// Package meta is the attribute core of the catalog: a registry of key
// definitions, per-record attribute snapshots, the diff/merge engine that
// reduces edits to minimal persisted deltas, and the mutation executor that
// ties them to the undo ledger.
//
// The central loop is execute: read a record's snapshot, compute the new
// snapshot under SET/ADD/REMOVE semantics, reduce (before, after) to a
// delta, persist it, and optionally record the before/after pair as a
// reversible change. Undo replays the same reduction with the snapshots
// swapped, so forward edits and undo share one code path.
//
// Records are processed independently; there is no cross-record atomicity
// and a failure on one record never rolls back another. Unknown key names
// are silently ignored on writes and return empty results on reads: callers
// routinely probe with third-party XMP names that are not in the catalog.
package meta
