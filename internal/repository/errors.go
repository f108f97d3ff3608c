package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrUnsupportedVersion means a stored blob was written by a newer schema.
	ErrUnsupportedVersion = errors.New("unsupported record version")
	ErrCorruptRecord      = errors.New("corrupt record")
)
