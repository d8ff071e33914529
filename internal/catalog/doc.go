// Package catalog persists the media catalog in SQLite and exposes record,
// tag, color-label, selection, and settings storage.
//
// The Store owns the database connection, the embedded schema, and a file
// lock preventing two processes from editing the same catalog. Attribute
// snapshots and the key catalog are managed by the meta package on top of
// the same handle; the attributes table deliberately carries no uniqueness
// constraint (see schema.sql).
//
// Schema changes bump the version in schema.go; existing databases with an
// older version are rejected at open time.
package catalog
