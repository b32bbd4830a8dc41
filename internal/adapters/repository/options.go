package repository

import "github.com/okian/podium/pkg/logger"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger overrides the file store's logger.
func WithLogger(lg logger.Logger) Option {
	return func(s *FileStore) {
		if lg != nil {
			s.log = lg
		}
	}
}
