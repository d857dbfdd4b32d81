package store

import "errors"

// ErrConstraint marks a duplicate key or missing foreign key. The
// affected write is aborted; callers do not retry it.
var ErrConstraint = errors.New("constraint violation")

// ErrNotFound marks a lookup for a row that does not exist.
var ErrNotFound = errors.New("record not found")
