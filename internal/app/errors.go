package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrBackpressure     = errors.New("delivery queue is full")
	ErrInvalidMember    = errors.New("invalid member")
	ErrInvalidValentine = errors.New("invalid valentine")
	ErrInvalidQuery     = errors.New("invalid leaderboard query")
	ErrPageSizeExceeded = errors.New("page size exceeds maximum")
)
