package repository

import "errors"

var (
	// ErrCorruptHistory means the stored record collection could not be
	// parsed. Degrading readers treat it as an empty history.
	ErrCorruptHistory = errors.New("stored prediction history is unreadable")

	// ErrCorruptStats means the cached statistics could not be parsed.
	ErrCorruptStats = errors.New("stored statistics are unreadable")

	// ErrInvalidImport rejects an import payload that is not a JSON array.
	ErrInvalidImport = errors.New("invalid import: payload must be a JSON array")

	// ErrPersist wraps a failure of the key-value substrate.
	ErrPersist = errors.New("persistence failure")
)
