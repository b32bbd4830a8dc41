package app

import (
	"context"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/partition"
	"github.com/okian/podium/pkg/logger"
)

// CollectCurrent pages through the verified feed and returns, newest
// first, up to limit attempts that still hold rank one of their
// partition, looking back the given number of days.
//
// Unlike Run this is stateless: no ledger, no journal, no rank
// memoization. Every candidate is checked against a fresh top-of-table
// lookup, so an attempt recently pushed off the top is excluded even
// when an earlier candidate shared its partition. Feed failures end the
// collection early with whatever was gathered.
func (s *Service) CollectCurrent(ctx context.Context, days, limit int) ([]model.Attempt, error) {
	s.setup(ctx)
	if limit <= 0 {
		return nil, nil
	}

	cutoff := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	out := make([]model.Attempt, 0, limit)
	offset := 0

	for len(out) < limit {
		attempts, err := s.client.RecentlyVerified(ctx, offset, s.cfg.PageSize)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			s.logger.Warn(ctx, "feed page failed, stopping collection",
				logger.Int("offset", offset), logger.Error(err))
			break
		}
		if len(attempts) == 0 {
			break
		}

		stop := false
		for i := range attempts {
			if len(out) >= limit {
				break
			}
			a := attempts[i]

			if !a.HasVerifiedAt() {
				continue
			}
			if a.VerifiedAt.Before(cutoff) {
				stop = true
				break
			}

			p := partition.FromAttempt(&a)
			if a.ID == "" || !p.Complete() {
				continue
			}

			rows, err := s.client.Leaderboard(ctx, p, 1)
			if err != nil || len(rows) == 0 || rows[0].RunID != a.ID {
				continue
			}

			// The table prints display names; keep the raw ids as
			// fallbacks the way the record log does.
			if a.GameName == "" {
				a.GameName = a.GameID
			}
			if a.CategoryName == "" {
				a.CategoryName = a.CategoryID
			}
			out = append(out, a)
		}

		if stop {
			break
		}
		offset += len(attempts)
		if len(attempts) < s.cfg.PageSize {
			break
		}
	}

	return out, nil
}
