package repository

import "errors"

// Sentinel kinds for journal and persistence errors.
var (
	ErrNotFound    = errors.New("record event not found")
	ErrDuplicate   = errors.New("record event already journaled")
	ErrEmptyID     = errors.New("record event missing run id")
	ErrWriteFailed = errors.New("persist write failed")
)
