package repository

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	_ = logger.Init()
	return NewFileStore(t.TempDir())
}

func TestFileStore_StateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SaveState(ctx, State{LastSeenEpoch: 1724500000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := s.LoadState(ctx)
	if st.LastSeenEpoch != 1724500000 {
		t.Errorf("expected epoch 1724500000, got %d", st.LastSeenEpoch)
	}
}

func TestFileStore_StateMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st := s.LoadState(ctx)
	if st.LastSeenEpoch != 0 {
		t.Errorf("expected zero state, got %d", st.LastSeenEpoch)
	}
}

func TestFileStore_StateCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := os.WriteFile(s.StatePath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := s.LoadState(ctx)
	if st.LastSeenEpoch != 0 {
		t.Errorf("expected zero state from corrupt file, got %d", st.LastSeenEpoch)
	}
}

func TestFileStore_StateNegativeClamped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := os.WriteFile(s.StatePath(), []byte(`{"last_seen_epoch": -5}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := s.LoadState(ctx)
	if st.LastSeenEpoch != 0 {
		t.Errorf("expected negative epoch clamped to 0, got %d", st.LastSeenEpoch)
	}
}

func TestFileStore_JournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	events := []model.RecordEvent{
		{
			RunID:         "runB",
			VerifiedEpoch: 2000,
			VerifiedISO:   "1970-01-01T00:33:20Z",
			Game:          "Super Mario Bros.",
			GameCover:     "https://www.speedrun.com/gameasset/om1m3625/cover.png",
			Category:      "Any%",
			Subcats:       "Glitches: No Major Glitches",
			PrimaryT:      287.3,
			Players:       "runnerone",
			PlayersData: []model.Player{
				{Name: "runnerone", Weblink: "https://example.org/user/runnerone", Image: "https://example.org/userasset/x/image.png"},
			},
			Weblink: "https://example.org/run/runB",
		},
		{
			RunID:         "runA",
			VerifiedEpoch: 1000,
			VerifiedISO:   "1970-01-01T00:16:40Z",
			Game:          "Celeste",
			Category:      "Clear",
			Level:         "Forsaken City",
			PrimaryT:      61,
			Players:       "someone",
			Weblink:       "https://example.org/run/runA",
		},
	}

	if err := s.SaveJournal(ctx, events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.LoadJournal(ctx)
	if !reflect.DeepEqual(got, events) {
		t.Errorf("journal round trip mismatch:\n got %+v\nwant %+v", got, events)
	}
}

func TestFileStore_JournalMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if got := s.LoadJournal(ctx); len(got) != 0 {
		t.Errorf("expected no events from missing file, got %d", len(got))
	}

	if err := os.WriteFile(s.JournalPath(), []byte("[{boom"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.LoadJournal(ctx); len(got) != 0 {
		t.Errorf("expected no events from corrupt file, got %d", len(got))
	}
}

func TestFileStore_EmptyJournalSerializesAsArray(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SaveJournal(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(s.JournalPath())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		t.Errorf("expected an array on disk, got %q", string(raw))
	}

	if got := s.LoadJournal(ctx); len(got) != 0 {
		t.Errorf("expected empty journal, got %d events", len(got))
	}
}

func TestFileStore_WritesAreAtomic(t *testing.T) {
	ctx := context.Background()
	_ = logger.Init()

	// The data directory is created on demand.
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewFileStore(dir)

	if err := s.SaveState(ctx, State{LastSeenEpoch: 42}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SaveJournal(ctx, []model.RecordEvent{{RunID: "run1", VerifiedEpoch: 1000}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No temp files left behind after a successful write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 files, got %d", len(entries))
	}
}
