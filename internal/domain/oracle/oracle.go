// Package oracle answers present-tense rank questions against the live
// competition feed. Rank-one answers are memoized per canonical partition
// key so a busy partition is only looked up once per run.
package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/partition"
	"github.com/okian/podium/pkg/metrics"
)

// Source provides ranked leaderboard state for a partition. Implemented by
// the feed client.
type Source interface {
	// Leaderboard returns up to top attempts for the partition, best first.
	Leaderboard(ctx context.Context, p partition.Partition, top int) ([]model.SnapshotRow, error)
}

// Option applies a configuration option to the Oracle.
type Option func(*Oracle)

// WithSource sets the leaderboard source.
func WithSource(src Source) Option {
	return func(o *Oracle) {
		if src != nil {
			o.source = src
		}
	}
}

// Oracle resolves rank-one holders with per-run memoization.
type Oracle struct {
	source Source

	mu   sync.RWMutex
	top1 map[string]string // canonical partition key -> rank-one attempt id
}

// New creates an Oracle with the given options.
func New(opts ...Option) *Oracle {
	o := &Oracle{
		top1: make(map[string]string),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Rank1 returns the id of the attempt currently holding rank one for the
// partition. Successful answers are cached for the lifetime of the Oracle;
// failed or empty lookups are not, so a later call for the same partition
// may retry.
func (o *Oracle) Rank1(ctx context.Context, p partition.Partition) (string, error) {
	if o.source == nil {
		return "", ErrNoSource
	}

	key := p.Key()

	o.mu.RLock()
	id, ok := o.top1[key]
	o.mu.RUnlock()
	if ok {
		metrics.RecordRankCacheHit()
		return id, nil
	}
	metrics.RecordRankCacheMiss()

	rows, err := o.source.Leaderboard(ctx, p, 1)
	if err != nil {
		return "", fmt.Errorf("rank-one lookup: %w", err)
	}
	if len(rows) == 0 || rows[0].RunID == "" {
		return "", ErrEmptyBoard
	}

	o.mu.Lock()
	o.top1[key] = rows[0].RunID
	o.mu.Unlock()

	return rows[0].RunID, nil
}

// Holds reports whether runID currently holds rank one for the partition.
func (o *Oracle) Holds(ctx context.Context, p partition.Partition, runID string) (bool, error) {
	if runID == "" {
		return false, nil
	}

	top, err := o.Rank1(ctx, p)
	if err != nil {
		return false, err
	}

	return top == runID, nil
}

// TopN returns the current top n attempts for the partition, best first.
// Snapshots are never cached; callers want the freshest ordering.
func (o *Oracle) TopN(ctx context.Context, p partition.Partition, n int) ([]model.SnapshotRow, error) {
	if o.source == nil {
		return nil, ErrNoSource
	}

	rows, err := o.source.Leaderboard(ctx, p, n)
	if err != nil {
		return nil, fmt.Errorf("snapshot lookup: %w", err)
	}

	return rows, nil
}
