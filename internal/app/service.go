// Package app orchestrates one scanner pass: load the persisted record
// log, scan the feed for fresh record holders, rebuild their partitions
// on a worker pool, persist the result and render the report.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	jobqueue "github.com/okian/podium/internal/adapters/mq/queue"
	workerpool "github.com/okian/podium/internal/adapters/mq/worker"
	repository "github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/srcom"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/chain"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/oracle"
	"github.com/okian/podium/internal/render"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Service wires the scanner's components together for one run.
type Service struct {
	cfg *config.Config

	// Core components, built by Run from the configuration.
	client  *srcom.Client
	store   *repository.FileStore
	journal repository.Journal
	ledger  dedupe.Ledger
	ranks   *oracle.Oracle
	chains  *chain.Reconstructor
	queue   jobqueue.Queue
	pool    *workerpool.Pool

	// Injection points for tests.
	now func() time.Time
	out io.Writer

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOutput redirects the rendered report when readme_out is unset.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// WithNow overrides the wall clock the run windows are derived from.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		now: time.Now,
		out: os.Stdout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// setup fills in whatever the options left unset. Run and
// CollectCurrent both start here.
func (s *Service) setup(ctx context.Context) {
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	if s.cfg == nil {
		s.cfg = config.New(ctx)
	}
	if s.client == nil {
		s.client = srcom.New(
			srcom.WithBaseURL(s.cfg.BaseURL),
			srcom.WithUserAgent(s.cfg.UserAgent),
			srcom.WithConnectTimeout(s.cfg.ConnectTimeout),
			srcom.WithRequestTimeout(s.cfg.RequestTimeout),
			srcom.WithRetryAttempts(s.cfg.RetryAttempts),
			srcom.WithRateLimit(s.cfg.RateLimitRPS),
		)
	}
}

// Run executes one scanner pass. The state and record log files are
// written exactly once, after the scan and every queued rebuild have
// finished; a run that aborts earlier leaves them untouched.
func (s *Service) Run(ctx context.Context) error {
	s.setup(ctx)

	wallStart := time.Now()
	start := s.now().UTC()
	pruneCutoff := start.Add(-s.cfg.Retention)

	s.logger.Info(ctx, "starting scanner run",
		logger.String("data_dir", s.cfg.DataDir),
		logger.String("base_url", s.cfg.BaseURL),
		logger.Duration("retention", s.cfg.Retention),
		logger.Duration("report_window", s.cfg.ReportWindow),
	)

	// Absorb the previous run: state file, pruned record log, ledger.
	s.store = repository.NewFileStore(s.cfg.DataDir)
	st := s.store.LoadState(ctx)
	s.journal = repository.NewTreapJournal()

	restored := 0
	for _, ev := range s.store.LoadJournal(ctx) {
		if err := s.journal.Append(ctx, ev); err != nil {
			s.logger.Warn(ctx, "dropping unusable persisted event",
				logger.String("run_id", ev.RunID), logger.Error(err))
			continue
		}
		restored++
	}
	pruned := s.journal.Prune(ctx, pruneCutoff)
	s.ledger = dedupe.NewLedger(dedupe.WithSeed(s.journal.IDs(ctx)))

	s.logger.Info(ctx, "state loaded",
		logger.Int64("last_seen_epoch", st.LastSeenEpoch),
		logger.Int("restored", restored),
		logger.Int("pruned", pruned),
		logger.Int("retained", s.journal.Count(ctx)),
	)

	if s.cfg.EnrichPlayers {
		s.enrichPlayers(ctx, pruneCutoff)
	}

	// Rank lookups and the rebuild pipeline.
	s.ranks = oracle.New(oracle.WithSource(s.client))
	s.chains = chain.New(chain.WithResolver(s.client))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.cfg.QueueSize))
	s.pool = workerpool.NewPool(s.cfg.WorkerCount, s.queue,
		&chainRebuilder{svc: s, cutoff: pruneCutoff})
	s.pool.Start(ctx)

	newLastSeen, scanErr := s.scan(ctx, st.LastSeenEpoch, pruneCutoff)

	// Queued rebuilds must land in the journal before it is persisted.
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	if scanErr != nil {
		return fmt.Errorf("scan aborted: %w", scanErr)
	}

	events := s.journal.All(ctx)
	if err := s.store.SaveJournal(ctx, events); err != nil {
		return fmt.Errorf("persisting record log: %w", err)
	}
	if err := s.store.SaveState(ctx, repository.State{LastSeenEpoch: newLastSeen}); err != nil {
		return fmt.Errorf("persisting scan state: %w", err)
	}
	s.logger.Info(ctx, "record log persisted",
		logger.Int("events", len(events)),
		logger.Int64("last_seen_epoch", newLastSeen),
	)

	doc := render.Daily(events, start, s.cfg.ReportWindow, s.cfg.Retention)
	if err := s.writeReport(doc); err != nil {
		return err
	}

	elapsed := time.Since(wallStart)
	metrics.RecordRunCompleted(float64(elapsed.Milliseconds()))
	if s.cfg.PushGateway != "" {
		if err := metrics.Push(ctx, s.cfg.PushGateway, "podium"); err != nil {
			s.logger.Warn(ctx, "metrics push failed", logger.Error(err))
		}
	}

	s.logger.Info(ctx, "scanner run complete",
		logger.Duration("elapsed", elapsed),
		logger.Int("events", len(events)),
	)
	return nil
}

// writeReport sends the rendered document to readme_out, or to the
// output writer (stdout by default) when no path is configured.
func (s *Service) writeReport(doc string) error {
	if s.cfg.ReadmeOut == "" {
		if _, err := io.WriteString(s.out, doc); err != nil {
			return fmt.Errorf("%w: %v", ErrReportWrite, err)
		}
		return nil
	}
	if err := os.WriteFile(s.cfg.ReadmeOut, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrReportWrite, err)
	}
	return nil
}

// buildEvent maps one fully embedded attempt onto the persisted record
// shape. Display names fall back to raw identifiers, and an attempt
// without a level keeps the level column empty.
func (s *Service) buildEvent(ctx context.Context, a *model.Attempt) model.RecordEvent {
	game := a.GameName
	if game == "" {
		game = a.GameID
	}
	category := a.CategoryName
	if category == "" {
		category = a.CategoryID
	}
	var level string
	if a.LevelID != "" {
		level = a.LevelName
		if level == "" {
			level = a.LevelID
		}
	}

	return model.RecordEvent{
		RunID:         a.ID,
		VerifiedEpoch: a.VerifiedAt.Unix(),
		VerifiedISO:   a.VerifiedISO,
		Game:          game,
		GameCover:     a.GameCover,
		Category:      category,
		Level:         level,
		Subcats:       s.client.SubcategoryLabels(ctx, a.CategoryID, a.Values),
		PrimaryT:      a.Duration,
		Players:       a.PlayerNames(),
		PlayersData:   a.Players,
		Weblink:       a.Weblink,
	}
}
