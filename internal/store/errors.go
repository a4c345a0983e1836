package store

import "errors"

var (
	// ErrNotFound indicates that the requested document was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid
	// (malformed session identifier, bad feedback value, and similar).
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied indicates an owner mismatch on a session or memory
	// item. The message is deliberately generic; it must not leak other
	// users' data.
	ErrPermissionDenied = errors.New("permission denied")
)
