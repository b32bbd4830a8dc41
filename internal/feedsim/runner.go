package feedsim

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// Serve generates a world and serves it until the context is cancelled.
func Serve(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting feed simulator",
		logger.String("addr", config.Addr),
		logger.Int("games", config.Games),
		logger.Int("players", config.Players),
		logger.Int("runs", config.Runs),
		logger.String("span", config.Span.String()),
		logger.Int64("seed", config.Seed))

	// Step 1: Generate the world
	world, err := NewWorld(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("world generation failed: %w", err)
	}

	// Step 2: Verify internal consistency
	if err := verifyWorld(ctx, world); err != nil {
		return fmt.Errorf("world verification failed: %w", err)
	}

	log.Printf("🌍 World ready: %d games, %d players, %d runs (%d records across %d brackets)",
		stats.GamesGenerated, stats.PlayersGenerated, stats.RunsGenerated,
		stats.RecordRuns, stats.PartitionsSeeded)

	// Step 3: Serve until cancelled
	api := NewServer(world, stats)
	srv := &http.Server{
		Addr:              config.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Get().Info(ctx, "feed simulator listening", logger.String("addr", config.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("serve failed: %w", err)
	case <-ctx.Done():
	}

	// Step 4: Drain in-flight requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "feed simulator stopped")
	return nil
}

// displayFinalStats prints the serving statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("runsGenerated", stats.RunsGenerated),
		logger.Int("recordRuns", stats.RecordRuns),
		logger.Int("partitionsSeeded", stats.PartitionsSeeded),
		logger.Int64("feedRequests", atomic.LoadInt64(&stats.FeedRequests)),
		logger.Int64("boardRequests", atomic.LoadInt64(&stats.BoardRequests)),
		logger.Int64("runRequests", atomic.LoadInt64(&stats.RunRequests)),
		logger.Int64("variableRequests", atomic.LoadInt64(&stats.VariableRequests)),
		logger.String("duration", stats.Duration.String()))
}
