package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

func event(id string, epoch int64) model.RecordEvent {
	return model.RecordEvent{
		RunID:         id,
		VerifiedEpoch: epoch,
		VerifiedISO:   time.Unix(epoch, 0).UTC().Format("2006-01-02T15:04:05Z"),
		Game:          "Game " + id,
		Category:      "Any%",
		PrimaryT:      100,
		Players:       "runner",
		Weblink:       "https://example.org/run/" + id,
	}
}

func TestTreapJournal_BasicOperations(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	if count := j.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := j.Append(ctx, event("run1", 1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count := j.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	all := j.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 event, got %d", len(all))
	}
	if all[0].RunID != "run1" {
		t.Errorf("expected run1, got %s", all[0].RunID)
	}
	if all[0].Game != "Game run1" {
		t.Errorf("expected payload to round-trip, got %q", all[0].Game)
	}

	ids := j.IDs(ctx)
	if len(ids) != 1 || ids[0] != "run1" {
		t.Errorf("expected ids [run1], got %v", ids)
	}
}

func TestTreapJournal_DuplicateRejection(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	if err := j.Append(ctx, event("run1", 1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := event("run1", 2000)
	dup.Game = "Other Game"
	err := j.Append(ctx, dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if count := j.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after duplicate, got %d", count)
	}

	// The first payload wins.
	all := j.All(ctx)
	if all[0].Game != "Game run1" || all[0].VerifiedEpoch != 1000 {
		t.Errorf("duplicate append must not replace the stored event, got %+v", all[0])
	}
}

func TestTreapJournal_EmptyID(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	if err := j.Append(ctx, event("", 1000)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
	if count := j.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
}

func TestTreapJournal_Ordering(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	// Insert out of order; All must come back newest first.
	epochs := map[string]int64{
		"run1": 3000,
		"run2": 1000,
		"run3": 5000,
		"run4": 2000,
		"run5": 4000,
	}
	for id, epoch := range epochs {
		if err := j.Append(ctx, event(id, epoch)); err != nil {
			t.Fatalf("unexpected error appending %s: %v", id, err)
		}
	}

	all := j.All(ctx)
	if len(all) != 5 {
		t.Fatalf("expected 5 events, got %d", len(all))
	}

	expectedOrder := []string{"run3", "run5", "run1", "run4", "run2"}
	for i, id := range expectedOrder {
		if all[i].RunID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].RunID)
		}
	}

	for i := 0; i < len(all)-1; i++ {
		if all[i].VerifiedEpoch < all[i+1].VerifiedEpoch {
			t.Errorf("events not newest first: %d < %d", all[i].VerifiedEpoch, all[i+1].VerifiedEpoch)
		}
	}
}

func TestTreapJournal_TieBreaking(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	// Same verification time, different run IDs.
	if err := j.Append(ctx, event("runB", 1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := j.Append(ctx, event("runA", 1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := j.All(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].RunID != "runA" {
		t.Errorf("expected runA first, got %s", all[0].RunID)
	}
	if all[1].RunID != "runB" {
		t.Errorf("expected runB second, got %s", all[1].RunID)
	}
}

func TestTreapJournal_Since(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	for i, epoch := range []int64{1000, 2000, 3000, 4000, 5000} {
		if err := j.Append(ctx, event(fmt.Sprintf("run%d", i+1), epoch)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The window edge is inclusive: the event at exactly the cutoff stays.
	got := j.Since(ctx, time.Unix(3000, 0))
	if len(got) != 3 {
		t.Fatalf("expected 3 events at or after cutoff, got %d", len(got))
	}
	expected := []string{"run5", "run4", "run3"}
	for i, id := range expected {
		if got[i].RunID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].RunID)
		}
	}

	// A cutoff newer than everything yields an empty window.
	if got := j.Since(ctx, time.Unix(6000, 0)); len(got) != 0 {
		t.Errorf("expected empty window, got %d events", len(got))
	}

	// A cutoff older than everything yields the whole journal.
	if got := j.Since(ctx, time.Unix(0, 0)); len(got) != 5 {
		t.Errorf("expected whole journal, got %d events", len(got))
	}
}

func TestTreapJournal_Prune(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	for i, epoch := range []int64{1000, 2000, 3000, 4000, 5000} {
		if err := j.Append(ctx, event(fmt.Sprintf("run%d", i+1), epoch)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Events strictly before the cutoff go; the one at the cutoff stays.
	dropped := j.Prune(ctx, time.Unix(3000, 0))
	if dropped != 2 {
		t.Errorf("expected 2 events pruned, got %d", dropped)
	}
	if count := j.Count(ctx); count != 3 {
		t.Errorf("expected count 3 after prune, got %d", count)
	}

	all := j.All(ctx)
	for _, ev := range all {
		if ev.VerifiedEpoch < 3000 {
			t.Errorf("pruned journal still holds %s at %d", ev.RunID, ev.VerifiedEpoch)
		}
	}

	// A pruned run ID may be journaled again.
	if err := j.Append(ctx, event("run1", 6000)); err != nil {
		t.Errorf("expected re-append of pruned id to succeed, got %v", err)
	}

	// Pruning with nothing out of window is a no-op.
	if dropped := j.Prune(ctx, time.Unix(2999, 0)); dropped != 0 {
		t.Errorf("expected 0 events pruned, got %d", dropped)
	}
}

func TestTreapJournal_Amend(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	for i, epoch := range []int64{1000, 2000, 3000} {
		if err := j.Append(ctx, event(fmt.Sprintf("run%d", i+1), epoch)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Payload-only amendment keeps the position.
	amended := event("run2", 2000)
	amended.PlayersData = []model.Player{{Name: "runner", Weblink: "https://example.org/user/runner"}}
	if err := j.Amend(ctx, amended); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := j.All(ctx)
	if all[1].RunID != "run2" || len(all[1].PlayersData) != 1 {
		t.Errorf("expected amended payload in place, got %+v", all[1])
	}
	if count := j.Count(ctx); count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	// Moving the verification time reorders the journal.
	moved := event("run1", 5000)
	if err := j.Amend(ctx, moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all = j.All(ctx)
	if all[0].RunID != "run1" || all[0].VerifiedEpoch != 5000 {
		t.Errorf("expected run1 newest after amend, got %+v", all[0])
	}

	// Unknown events cannot be amended.
	if err := j.Amend(ctx, event("ghost", 1000)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := j.Amend(ctx, event("", 1000)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}

func TestTreapJournal_EmptyAndSingleElement(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	if all := j.All(ctx); len(all) != 0 {
		t.Errorf("expected 0 events from empty journal, got %d", len(all))
	}
	if got := j.Since(ctx, time.Unix(0, 0)); len(got) != 0 {
		t.Errorf("expected 0 events from empty window, got %d", len(got))
	}
	if dropped := j.Prune(ctx, time.Unix(1000, 0)); dropped != 0 {
		t.Errorf("expected 0 events pruned from empty journal, got %d", dropped)
	}
	if ids := j.IDs(ctx); len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}

	if err := j.Append(ctx, event("single", 1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := j.All(ctx)
	if len(all) != 1 || all[0].RunID != "single" {
		t.Errorf("expected [single], got %v", all)
	}
}

func TestTreapJournal_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	j := NewTreapJournal()

	numGoroutines := 10
	numAppends := 100

	var wg sync.WaitGroup
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < numAppends; i++ {
				ev := event(fmt.Sprintf("run_%d_%d", id, i), int64(1000+i))
				if err := j.Append(ctx, ev); err != nil {
					t.Errorf("goroutine %d: unexpected error: %v", id, err)
				}
			}
		}(g)
	}
	wg.Wait()

	expected := numGoroutines * numAppends
	if count := j.Count(ctx); count != expected {
		t.Errorf("expected count %d, got %d", expected, count)
	}

	// Ordering holds after concurrent inserts.
	all := j.All(ctx)
	for i := 0; i < len(all)-1; i++ {
		if all[i].VerifiedEpoch < all[i+1].VerifiedEpoch {
			t.Fatalf("events not newest first at %d: %d < %d", i, all[i].VerifiedEpoch, all[i+1].VerifiedEpoch)
		}
		if all[i].VerifiedEpoch == all[i+1].VerifiedEpoch && all[i].RunID >= all[i+1].RunID {
			t.Fatalf("tie not broken by id at %d: %s >= %s", i, all[i].RunID, all[i+1].RunID)
		}
	}
}

func BenchmarkTreapJournal_Append(b *testing.B) {
	ctx := context.Background()
	j := NewTreapJournal()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = j.Append(ctx, event(fmt.Sprintf("run_%d", i), rand.Int63n(86_400)))
	}
}

func BenchmarkTreapJournal_MixedLoad(b *testing.B) {
	ctx := context.Background()
	j := NewTreapJournal()

	// Pre-populate with a day's worth of records at scale.
	for i := 0; i < 100_000; i++ {
		_ = j.Append(ctx, event(fmt.Sprintf("seed_%d", i), rand.Int63n(86_400)))
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			switch i % 10 {
			case 0, 1, 2, 3: // 40% - appends
				_ = j.Append(ctx, event(fmt.Sprintf("bench_%d", i), rand.Int63n(86_400)))
			case 4, 5, 6: // 30% - window reads
				_ = j.Since(ctx, time.Unix(43_200, 0))
			case 7, 8: // 20% - full reads
				_ = j.All(ctx)
			default: // 10% - counts
				_ = j.Count(ctx)
			}
			i++
		}
	})
}
