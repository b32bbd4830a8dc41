// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Ledger records attempt IDs that already produced a record event, so a
// rescan of overlapping feed pages can never emit the same record twice.
// The set only grows during a run; retention pruning happens in the
// journal, which reseeds the ledger on the next start.
type Ledger interface {
	// Seen reports whether id was already recorded, without recording it.
	Seen(ctx context.Context, id string) bool

	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	// Rebuild workers run concurrently - this is the only safe way to claim
	// an id.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing it to be retried.
	// This should only be used when an id was claimed but the record event
	// could not be completed (e.g., the detail lookup failed).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryLedger implements Ledger with a mutex-guarded set.
type inMemoryLedger struct {
	mu   sync.RWMutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewLedger creates an in-memory ledger with configuration options.
func NewLedger(opts ...Option) Ledger {
	l := &inMemoryLedger{
		seen: make(map[string]struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	l.size.Store(int64(len(l.seen)))
	return l
}

// Seen reports whether id was already recorded.
func (l *inMemoryLedger) Seen(ctx context.Context, id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// SeenAndRecord atomically checks if id was seen and records it if not.
// Returns true if id was already seen, false if it was newly recorded.
func (l *inMemoryLedger) SeenAndRecord(ctx context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.seen[id]; exists {
		return true // Already seen
	}

	l.seen[id] = struct{}{}
	l.size.Add(1)
	return false // Newly recorded
}

// Unrecord removes an ID from the seen set, allowing it to be retried.
func (l *inMemoryLedger) Unrecord(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.seen[id]; exists {
		delete(l.seen, id)
		l.size.Add(-1)
	}
}

// Size returns the current number of entries in the ledger.
func (l *inMemoryLedger) Size() int64 {
	return l.size.Load()
}
