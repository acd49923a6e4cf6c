package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("member not found")
	ErrInvalidInput = errors.New("invalid store input")
	ErrClosed       = errors.New("store closed")
)
