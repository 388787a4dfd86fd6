// Package storeerr holds the sentinel errors shared by every store
// implementation, so callers can branch with errors.Is regardless of which
// backend is wired in.
package storeerr

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateID     = errors.New("a record with this id already exists")
	ErrDuplicateEmail  = errors.New("an account with this email already exists")
	ErrVersionConflict = errors.New("record was modified by another writer")
)
