// Package repository keeps the record log between runs: an ordered
// in-memory journal plus the state and log files under the data directory.
package repository

import (
	"context"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// Journal provides ordered access to the record events of a run.
// Implementations must be safe for concurrent use; rebuild workers append
// while the controller reads.
type Journal interface {
	// Append adds a new record event.
	// Returns ErrDuplicate when an event with the same run ID is already held.
	Append(ctx context.Context, ev model.RecordEvent) error

	// Amend replaces the payload of a held event, keyed by run ID.
	// Returns ErrNotFound when the event is unknown.
	Amend(ctx context.Context, ev model.RecordEvent) error

	// All returns every event ordered newest first.
	All(ctx context.Context) []model.RecordEvent

	// Since returns the events verified at or after cutoff, newest first.
	Since(ctx context.Context, cutoff time.Time) []model.RecordEvent

	// IDs returns the run IDs of all held events.
	IDs(ctx context.Context) []string

	// Prune drops events verified before cutoff.
	// Returns the number of events dropped.
	Prune(ctx context.Context, cutoff time.Time) int

	// Count returns the number of events held.
	Count(ctx context.Context) int
}
