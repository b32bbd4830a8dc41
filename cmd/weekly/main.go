// Command weekly prints a one-shot Markdown table of attempts that
// currently hold rank one of their leaderboard, looking back a number
// of days. It keeps no state and writes nothing but the table.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/render"
	"github.com/okian/podium/pkg/logger"
)

// Default configuration constants.
const (
	defaultDays  = 7
	defaultLimit = 50
)

func main() {
	var (
		days  = flag.Int("days", defaultDays, "How many days back to scan")
		limit = flag.Int("limit", defaultLimit, "Maximum number of rows to collect")
		out   = flag.String("out", "", "Output file (default: stdout)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(logger.Get().Named("weekly")),
	)
	attempts, err := svc.CollectCurrent(ctx, *days, *limit)
	if err != nil {
		logger.Get().Error(ctx, "collection failed", logger.Error(err))
		os.Exit(1)
	}

	doc := render.Weekly(attempts, *days)

	var dst io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			os.Stderr.WriteString("failed to open output: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer f.Close()
		dst = f
	}
	if _, err := io.WriteString(dst, doc); err != nil {
		os.Stderr.WriteString("failed to write table: " + err.Error() + "\n")
		os.Exit(1)
	}
}
