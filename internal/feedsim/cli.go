package feedsim

import (
	"fmt"
	"os"

	"github.com/okian/podium/pkg/logger"
)

// SetupLogging initializes the logger, optionally at debug level.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return fmt.Errorf("failed to set log level: %w", err)
		}
	}
	return nil
}

// ShowHelp prints usage information for the feed simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Podium Feed Simulator
=====================

A local stand-in for the speedrun.com v1 API: it generates a seeded
timeline of verified runs and serves the feed, leaderboard, run and
variable endpoints over HTTP.

Usage:
  go run cmd/feedsim/main.go [options]

Options:
  -addr string
        Listen address (default ":8095")
  -games int
        Number of games to generate (default 3)
  -players int
        Size of the player pool (default 40)
  -runs int
        Number of verified runs on the timeline (default 1200)
  -span duration
        Time span the timeline covers, ending now (default 72h)
  -seed int
        Seed for the timeline structure; 0 picks a random seed
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Serve a default world
  go run cmd/feedsim/main.go

  # A dense two-day timeline with a fixed seed
  go run cmd/feedsim/main.go -runs 5000 -span 48h -seed 42

Point the scanner at the simulator with:
  PODIUM_BASE_URL=http://localhost:8095/api/v1
`)
}
