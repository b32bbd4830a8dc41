// Package chain reconstructs the record progression of one partition
// from a present-tense leaderboard snapshot.
//
// A snapshot only shows where attempts stand today, not when each of
// them briefly held the record. Replaying the snapshot in verification
// order recovers that history: every attempt that beat (or tied) the
// best time known at its moment was a record when it was verified.
package chain

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	model "github.com/okian/podium/internal/domain/model"
)

// Epsilon is the duration tolerance. Anything closer than this counts
// as the same time, so an exactly matched run ties the record instead
// of losing it to float noise.
const Epsilon = 1e-6

// Resolver backfills verification timestamps the snapshot omitted.
type Resolver interface {
	// VerifiedAt returns the verification time of one attempt, or a zero
	// time when the upstream does not know it either.
	VerifiedAt(ctx context.Context, runID string) (time.Time, error)
}

// Option applies a configuration option to the Reconstructor.
type Option func(*Reconstructor)

// WithResolver sets the timestamp resolver used for snapshot rows that
// arrived without a verification time.
func WithResolver(r Resolver) Option {
	return func(c *Reconstructor) {
		if r != nil {
			c.resolver = r
		}
	}
}

// Reconstructor replays snapshots into record progressions.
type Reconstructor struct {
	resolver Resolver
}

// New creates a Reconstructor with configuration options.
func New(opts ...Option) *Reconstructor {
	c := &Reconstructor{}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Rebuild returns, in chronological order, the snapshot rows that held
// or tied the record on or after cutoff.
//
// The baseline is the best duration among rows verified strictly before
// cutoff. With a baseline, an in-window row qualifies when it beats the
// running best by more than Epsilon (and lowers it) or matches it
// within Epsilon (a tie; the best stays). Without a baseline the first
// in-window row seeds the progression and is itself a record.
//
// Rows without a usable duration are dropped. Rows without a timestamp
// are resolved through the Resolver; rows that stay unresolved cannot
// be placed on the timeline and are dropped too. A resolver failure
// drops only the affected row.
func (c *Reconstructor) Rebuild(ctx context.Context, rows []model.SnapshotRow, cutoff time.Time) ([]model.SnapshotRow, error) {
	usable := make([]model.SnapshotRow, 0, len(rows))
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rebuild cancelled: %w", err)
		}
		if r.RunID == "" || r.Duration < 0 {
			continue
		}
		if r.VerifiedAt.IsZero() && c.resolver != nil {
			ts, err := c.resolver.VerifiedAt(ctx, r.RunID)
			if err != nil {
				continue
			}
			r.VerifiedAt = ts
		}
		if r.VerifiedAt.IsZero() {
			continue
		}
		usable = append(usable, r)
	}

	// Best time already on the books when the window opened.
	baseline := math.Inf(1)
	candidates := make([]model.SnapshotRow, 0, len(usable))
	for _, r := range usable {
		if r.VerifiedAt.Before(cutoff) {
			if r.Duration < baseline {
				baseline = r.Duration
			}
			continue
		}
		candidates = append(candidates, r)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].VerifiedAt.Equal(candidates[j].VerifiedAt) {
			return candidates[i].VerifiedAt.Before(candidates[j].VerifiedAt)
		}
		return candidates[i].RunID < candidates[j].RunID
	})

	best := baseline
	haveBest := !math.IsInf(best, 1)

	progression := make([]model.SnapshotRow, 0, len(candidates))
	for _, r := range candidates {
		switch {
		case !haveBest:
			// Nothing to beat yet: the window's first attempt is a record.
			haveBest = true
			best = r.Duration
		case r.Duration < best-Epsilon:
			best = r.Duration
		case math.Abs(r.Duration-best) <= Epsilon:
			// Ties the standing record; the best stays where it is.
		default:
			continue
		}
		progression = append(progression, r)
	}

	return progression, nil
}
