package meta

import "errors"

// ErrKeyExists reports a duplicate tagname on key insertion. It is the only
// registry failure callers are expected to recover from.
var ErrKeyExists = errors.New("metadata key already exists")
