package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if PODIUM_CONFIG is set
//  3. env (prefix PODIUM_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PODIUM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PODIUM_DATA_DIR, PODIUM_PAGE_SIZE, ...
	// Map env keys like PODIUM_PAGE_SIZE -> page_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PODIUM_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "podium_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the scanner cannot run with.
func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.PageSize <= 0:
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	case c.SnapshotDepth <= 0:
		return fmt.Errorf("%w: snapshot_depth must be positive", ErrInvalidConfig)
	case c.Retention <= 0:
		return fmt.Errorf("%w: retention must be positive", ErrInvalidConfig)
	case c.ReportWindow <= 0 || c.ReportWindow > c.Retention:
		return fmt.Errorf("%w: report_window must be positive and within retention", ErrInvalidConfig)
	case c.OverlapMargin < 0:
		return fmt.Errorf("%w: overlap_margin must not be negative", ErrInvalidConfig)
	case c.RetryAttempts <= 0:
		return fmt.Errorf("%w: retry_attempts must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
