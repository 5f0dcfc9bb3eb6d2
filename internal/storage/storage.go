package storage

import "errors"

// ErrNotFound is returned by repositories when a lookup matches no record.
// Callers treat it as an expected outcome, not a storage failure.
var ErrNotFound = errors.New("record not found")
