// Package undo keeps a bounded in-memory ledger of reversible edit groups.
//
// The ledger knows nothing about what its payloads do: producers implement
// Change, whose Invert method returns the already-swapped inverse, so undo
// and redo both reduce to "apply this change forward". Replay trusts the
// state captured inside each change rather than re-reading storage, which
// keeps undo exact even when other writers touched the same rows in between
// (last writer wins).
package undo
