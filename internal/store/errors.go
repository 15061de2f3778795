package store

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate key")
	ErrInvalidID     = errors.New("invalid id")
	ErrAlreadyMember = errors.New("already a member")

	// ErrOwnerMismatch is returned by owner-scoped writes when the record
	// exists but belongs to someone else.
	ErrOwnerMismatch = errors.New("owner mismatch")
)
