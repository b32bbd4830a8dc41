package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/podium/internal/adapters/srcom"
	"github.com/okian/podium/internal/domain/partition"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Scan stop reasons, as labelled on the stop metric.
const (
	stopFetchFailed  = "fetch_failed"
	stopParseFailed  = "parse_failed"
	stopEmptyPage    = "empty_page"
	stopFloorReached = "floor_reached"
	stopShortPage    = "short_page"
)

// Attempt skip reasons.
const (
	skipExpired    = "expired"
	skipDuplicate  = "duplicate"
	skipIncomplete = "incomplete"
)

// scanTally counts what one scan covered.
type scanTally struct {
	pages   int64
	seen    int64
	checked int64
	keys    int64
}

// scan pages through the verified feed newest first, dispatching one
// rebuild per record-holding partition, until it reaches the scan floor
// or runs out of feed. Returns the advanced high-water epoch.
//
// The floor sits one overlap margin behind the previous run's
// high-water mark (or behind the retention cutoff on a first run), so
// attempts whose verification timestamps landed out of order are still
// seen by a later run. Feed failures end the scan early but keep the
// progress made; only context cancellation is an error.
func (s *Service) scan(ctx context.Context, lastSeen int64, pruneCutoff time.Time) (int64, error) {
	pruneEpoch := pruneCutoff.Unix()
	overlap := int64(s.cfg.OverlapMargin / time.Second)

	scanFloor := lastSeen - overlap
	if lastSeen <= 0 {
		scanFloor = pruneEpoch - overlap
	}
	if scanFloor < 0 {
		scanFloor = 0
	}

	newLastSeen := lastSeen
	// Partitions already rebuilt within this scan. Distinct from the
	// ledger: a partition with several fresh record runs on the feed
	// still gets exactly one rebuild.
	processed := make(map[string]struct{})
	var tally scanTally

	offset := 0
	for {
		tally.pages++
		s.logger.Debug(ctx, "fetching feed page",
			logger.Int("offset", offset),
			logger.Int("max", s.cfg.PageSize),
			logger.Int64("scan_floor", scanFloor),
			logger.Int64("prune_cutoff", pruneEpoch),
			logger.Int64("last_seen", lastSeen),
		)

		attempts, err := s.client.RecentlyVerified(ctx, offset, s.cfg.PageSize)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return newLastSeen, ctxErr
			}
			reason := stopFetchFailed
			if errors.Is(err, srcom.ErrDecodeFailed) {
				reason = stopParseFailed
			}
			metrics.RecordScanStop(reason)
			s.logger.Warn(ctx, "feed page failed, stopping scan",
				logger.Int("offset", offset),
				logger.String("reason", reason),
				logger.Error(err),
			)
			break
		}
		metrics.RecordPageFetched()

		if len(attempts) == 0 {
			metrics.RecordScanStop(stopEmptyPage)
			s.logger.Debug(ctx, "feed page empty, stopping scan", logger.Int("offset", offset))
			break
		}

		stop := false
		for i := range attempts {
			a := &attempts[i]

			if !a.HasVerifiedAt() {
				continue
			}
			tally.seen++
			metrics.RecordAttemptSeen()

			epoch := a.VerifiedAt.Unix()
			if epoch > newLastSeen {
				newLastSeen = epoch
				metrics.UpdateHighWaterEpoch(epoch)
			}

			if epoch < scanFloor {
				// Everything further down the feed is older still.
				metrics.RecordScanStop(stopFloorReached)
				s.logger.Debug(ctx, "reached scan floor, stopping scan",
					logger.Int64("scan_floor", scanFloor),
					logger.Int64("verified_epoch", epoch),
				)
				stop = true
				break
			}
			if epoch < pruneEpoch {
				metrics.RecordAttemptSkipped(skipExpired)
				continue
			}

			tally.checked++

			if a.ID == "" {
				metrics.RecordAttemptSkipped(skipIncomplete)
				continue
			}
			if s.ledger.Seen(ctx, a.ID) {
				metrics.RecordAttemptSkipped(skipDuplicate)
				continue
			}

			p := partition.FromAttempt(a)
			if !p.Complete() {
				metrics.RecordAttemptSkipped(skipIncomplete)
				continue
			}

			holds, err := s.ranks.Holds(ctx, p, a.ID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return newLastSeen, ctxErr
				}
				s.logger.Debug(ctx, "rank lookup failed",
					logger.String("partition", p.Key()), logger.Error(err))
				continue
			}
			if !holds {
				continue
			}

			key := p.Key()
			if _, dispatched := processed[key]; dispatched {
				continue
			}
			processed[key] = struct{}{}
			tally.keys++
			metrics.RecordPartitionInvestigated()

			s.logger.Debug(ctx, "record holder detected, dispatching rebuild",
				logger.String("partition", key),
				logger.String("run_id", a.ID),
			)
			if err := s.queue.Enqueue(ctx, p); err != nil {
				return newLastSeen, fmt.Errorf("dispatching rebuild: %w", err)
			}
		}
		if stop {
			break
		}

		offset += len(attempts)
		if len(attempts) < s.cfg.PageSize {
			metrics.RecordScanStop(stopShortPage)
			break
		}
	}

	s.logger.Info(ctx, "scan complete",
		logger.Int64("pages", tally.pages),
		logger.Int64("seen", tally.seen),
		logger.Int64("checked", tally.checked),
		logger.Int64("partitions_dispatched", tally.keys),
		logger.Int64("new_last_seen", newLastSeen),
	)
	return newLastSeen, nil
}
