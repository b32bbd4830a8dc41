package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/podium/internal/feedsim"
)

// Default configuration constants.
const (
	defaultGames   = 3
	defaultPlayers = 40
	defaultRuns    = 1200
	defaultSpan    = 72 * time.Hour
)

func main() {
	var (
		addr    = flag.String("addr", ":8095", "Listen address")
		games   = flag.Int("games", defaultGames, "Number of games to generate")
		players = flag.Int("players", defaultPlayers, "Size of the player pool")
		runs    = flag.Int("runs", defaultRuns, "Number of verified runs on the timeline")
		span    = flag.Duration("span", defaultSpan, "Time span the timeline covers, ending now")
		seed    = flag.Int64("seed", 0, "Seed for the timeline structure; 0 picks a random seed")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		feedsim.ShowHelp()
		return
	}

	// Setup logging
	if err := feedsim.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Serve until interrupted
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config := &feedsim.Config{
		Addr:    *addr,
		Games:   *games,
		Players: *players,
		Runs:    *runs,
		Span:    *span,
		Seed:    *seed,
	}

	if err := feedsim.Serve(ctx, config); err != nil {
		os.Stderr.WriteString("Simulator failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
