package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrUnknownSortKey = errors.New("unknown sort key")
)
