package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig indicates a configuration the scanner cannot run with.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig indicates the file or env layer could not be read.
	ErrLoadConfig = errors.New("load config failed")
)
