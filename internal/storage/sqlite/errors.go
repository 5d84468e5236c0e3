package sqlite

import "errors"

// Sentinel errors surfaced to the HTTP layer. ErrNotFound deliberately
// covers both "does not exist" and "exists but belongs to someone else"
// so handlers never leak existence of foreign records.
var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrEmailTaken   = errors.New("email already in use")
)
