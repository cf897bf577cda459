package db

import "errors"

// Domain-level database error sentinels.
var (
	// Run errors
	ErrRunNotFound = errors.New("analysis run not found")
)
