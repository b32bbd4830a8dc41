package oracle

import "errors"

var (
	// ErrNoSource indicates the oracle was built without a leaderboard source.
	ErrNoSource = errors.New("no leaderboard source configured")

	// ErrEmptyBoard indicates the partition has no ranked attempts yet.
	ErrEmptyBoard = errors.New("leaderboard has no ranked attempts")
)
