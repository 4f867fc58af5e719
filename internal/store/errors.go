package store

import "errors"

// Sentinel errors returned by store implementations. Handlers and services
// translate these into the application error taxonomy.
var (
	// ErrNotFound indicates the requested record does not exist or does not
	// belong to the caller.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput indicates the caller supplied a value the store cannot
	// accept (unsupported platform, empty token).
	ErrInvalidInput = errors.New("invalid input")
)
