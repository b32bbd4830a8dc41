package app

import (
	"context"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// enrichPlayers backfills players_data on in-window events persisted by
// versions that predate player embedding, so their avatars render. A
// failed lookup leaves the event as it was; the next run retries.
func (s *Service) enrichPlayers(ctx context.Context, cutoff time.Time) {
	enriched := 0
	for _, ev := range s.journal.Since(ctx, cutoff) {
		if ev.PlayersData != nil || ev.RunID == "" {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		full, err := s.client.Run(ctx, ev.RunID)
		if err != nil {
			s.logger.Debug(ctx, "player backfill lookup failed",
				logger.String("run_id", ev.RunID), logger.Error(err))
			continue
		}
		if len(full.Players) == 0 {
			continue
		}

		ev.PlayersData = full.Players
		if err := s.journal.Amend(ctx, ev); err != nil {
			s.logger.Warn(ctx, "player backfill amend failed",
				logger.String("run_id", ev.RunID), logger.Error(err))
			continue
		}
		enriched++
	}

	if enriched > 0 {
		s.logger.Info(ctx, "backfilled player details", logger.Int("events", enriched))
	}
}
