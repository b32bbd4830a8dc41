// Package config defines scanner configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir holds the persisted state and record log files.
	DataDir string `koanf:"data_dir"`

	// BaseURL is the root of the remote competition-results API.
	BaseURL string `koanf:"base_url"`

	// UserAgent identifies the scanner to the remote API.
	UserAgent string `koanf:"user_agent"`

	// PageSize sets how many attempts each feed page requests.
	PageSize int `koanf:"page_size"`

	// SnapshotDepth sets how many ranked entries a leaderboard snapshot pulls.
	SnapshotDepth int `koanf:"snapshot_depth"`

	// Retention bounds how long record events are kept.
	Retention time.Duration `koanf:"retention"`

	// ReportWindow is the short window highlighted at the top of the report.
	ReportWindow time.Duration `koanf:"report_window"`

	// OverlapMargin is re-scanned behind the high-water mark to absorb
	// out-of-order verification timestamps.
	OverlapMargin time.Duration `koanf:"overlap_margin"`

	// ConnectTimeout and RequestTimeout bound each upstream HTTP call.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RetryAttempts caps upstream retries on 429/5xx responses.
	RetryAttempts int `koanf:"retry_attempts"`

	// RateLimitRPS throttles upstream requests per second. Zero disables.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`

	// WorkerCount sets the number of chain rebuild workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory rebuild job queue.
	QueueSize int `koanf:"queue_size"`

	// ReadmeOut is the rendered report destination; empty means stdout.
	ReadmeOut string `koanf:"readme_out"`

	// PushGateway receives the run's metrics; empty disables pushing.
	PushGateway string `koanf:"push_gateway"`

	// EnrichPlayers backfills player details on persisted events that
	// predate player embedding.
	EnrichPlayers bool `koanf:"enrich_players"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:       "info",
		DataDir:        "data",
		BaseURL:        "https://www.speedrun.com/api/v1",
		UserAgent:      "podium-bot/2.1",
		PageSize:       200,
		SnapshotDepth:  200,
		Retention:      24 * time.Hour,
		ReportWindow:   1 * time.Hour,
		OverlapMargin:  24 * time.Hour,
		ConnectTimeout: 20 * time.Second,
		RequestTimeout: 60 * time.Second,
		RetryAttempts:  6,
		RateLimitRPS:   4,
		WorkerCount:    4,
		QueueSize:      256,
		ReadmeOut:      "",
		PushGateway:    "",
		EnrichPlayers:  true,
	}
	return c
}
