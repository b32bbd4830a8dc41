package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// Persisted file names under the data directory.
const (
	stateFile   = "state.json"
	journalFile = "wrs.json"
)

// State is the persisted scan position. The high-water mark never moves
// backwards across runs.
type State struct {
	LastSeenEpoch int64 `json:"last_seen_epoch"`
}

// FileStore reads and writes the files that survive between runs: the scan
// state and the record log. Loads never fail; a missing or unusable file
// means a fresh start.
type FileStore struct {
	dir string
	log logger.Logger
}

// NewFileStore constructs a file store rooted at the data directory.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir: dir,
		log: logger.Get().Named("repository"),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StatePath returns the location of the persisted scan state.
func (s *FileStore) StatePath() string { return filepath.Join(s.dir, stateFile) }

// JournalPath returns the location of the persisted record log.
func (s *FileStore) JournalPath() string { return filepath.Join(s.dir, journalFile) }

// LoadState returns the persisted scan state, or a zero state when the
// file is missing or unusable.
func (s *FileStore) LoadState(ctx context.Context) State {
	raw, err := os.ReadFile(s.StatePath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(ctx, "state file unreadable, starting fresh",
				logger.String("path", s.StatePath()), logger.Error(err))
		}
		return State{}
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.log.Warn(ctx, "state file corrupt, starting fresh",
			logger.String("path", s.StatePath()), logger.Error(err))
		return State{}
	}
	if st.LastSeenEpoch < 0 {
		st.LastSeenEpoch = 0
	}
	return st
}

// SaveState writes the scan state.
func (s *FileStore) SaveState(ctx context.Context, st State) error {
	raw, err := json.MarshalIndent(st, "", "\t")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return s.writeFile(s.StatePath(), raw)
}

// LoadJournal parses the persisted record log. Missing or unusable files
// yield no events.
func (s *FileStore) LoadJournal(ctx context.Context) []model.RecordEvent {
	raw, err := os.ReadFile(s.JournalPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(ctx, "record log unreadable, starting fresh",
				logger.String("path", s.JournalPath()), logger.Error(err))
		}
		return nil
	}

	var events []model.RecordEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		s.log.Warn(ctx, "record log corrupt, starting fresh",
			logger.String("path", s.JournalPath()), logger.Error(err))
		return nil
	}
	return events
}

// SaveJournal writes the record log. Callers pass events already ordered
// newest first; the file keeps that order.
func (s *FileStore) SaveJournal(ctx context.Context, events []model.RecordEvent) error {
	if events == nil {
		events = []model.RecordEvent{} // an empty log serializes as [], not null
	}
	raw, err := json.MarshalIndent(events, "", "\t")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return s.writeFile(s.JournalPath(), raw)
}

// writeFile replaces path atomically: the data lands in a same-directory
// temp file that is synced and renamed over the target.
func (s *FileStore) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	tmp := path + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := fh.Sync(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
