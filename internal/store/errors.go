package store

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound = errors.New("record not found")
	ErrInvalid  = errors.New("invalid record")
	ErrOpen     = errors.New("cannot open store")
)
