package app

import (
	"context"
	"fmt"
	"time"

	workerpool "github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/pkg/logger"
)

// chainRebuilder turns one queued partition into journaled record
// events: snapshot the top of its table, replay the snapshot into the
// record progression, and append every candidate the ledger has not
// claimed yet.
type chainRebuilder struct {
	svc    *Service
	cutoff time.Time
}

// Rebuild implements worker.Rebuilder. A failed snapshot aborts only
// this partition; a failed candidate lookup drops only that candidate
// and releases its ledger claim so a later run can retry it.
func (r *chainRebuilder) Rebuild(ctx context.Context, p workerpool.Job) error {
	s := r.svc

	rows, err := s.ranks.TopN(ctx, p, s.cfg.SnapshotDepth)
	if err != nil {
		return fmt.Errorf("snapshot for %s: %w", p.Key(), err)
	}

	progression, err := s.chains.Rebuild(ctx, rows, r.cutoff)
	if err != nil {
		return err
	}

	appended := 0
	for _, row := range progression {
		if s.ledger.SeenAndRecord(ctx, row.RunID) {
			continue
		}

		full, err := s.client.Run(ctx, row.RunID)
		if err != nil {
			s.ledger.Unrecord(ctx, row.RunID)
			s.logger.Debug(ctx, "detail lookup failed",
				logger.String("run_id", row.RunID), logger.Error(err))
			continue
		}
		// Re-validate on the fresh payload: a candidate that lost its
		// timestamp or fell outside the retention window is dropped.
		if !full.HasVerifiedAt() || full.VerifiedAt.Before(r.cutoff) {
			s.ledger.Unrecord(ctx, row.RunID)
			continue
		}

		ev := s.buildEvent(ctx, full)
		if err := s.journal.Append(ctx, ev); err != nil {
			s.ledger.Unrecord(ctx, row.RunID)
			s.logger.Warn(ctx, "journal rejected event",
				logger.String("run_id", ev.RunID), logger.Error(err))
			continue
		}
		appended++
	}

	if appended > 0 {
		s.logger.Debug(ctx, "partition rebuilt",
			logger.String("partition", p.Key()),
			logger.Int("events", appended),
		)
	}
	return nil
}
