package app_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	repository "github.com/okian/podium/internal/adapters/repository"
	app "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/feedsim"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// feedBase anchors the synthetic timeline. The service clock is pinned
// a few hours after the newest run so every attempt sits inside the
// retention window.
var feedBase = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func feedGames() []feedsim.Game {
	return []feedsim.Game{{
		ID:       "game1",
		Name:     "Celestial Dash",
		CoverURI: "https://www.speedrun.com/gameasset/game1/cover?v=3",
		Categories: []feedsim.Category{{
			ID:   "cat1",
			Name: "Any%",
		}},
	}}
}

func feedPlayers() []feedsim.Player {
	names := []string{"PixelPacer", "FrameCount", "SplitSecond", "WarpWhistle", "RouteZero", "GoldSplit"}
	players := make([]feedsim.Player, 0, len(names))
	for i, name := range names {
		players = append(players, feedsim.Player{
			ID:      fmt.Sprintf("user%d", i+1),
			Name:    name,
			Weblink: "https://www.speedrun.com/user/" + name,
		})
	}
	return players
}

// progressionRuns is the record progression replayed by the rebuild:
// 100 seeds the chain, 90 improves, the second 90 ties, 95 never
// qualifies, 85 improves again. Distinct players keep every run on the
// board.
func progressionRuns() []feedsim.Run {
	durations := []float64{100, 90, 90, 95, 85}
	runs := make([]feedsim.Run, 0, len(durations))
	for i, d := range durations {
		id := fmt.Sprintf("run%d", i+1)
		runs = append(runs, feedsim.Run{
			ID:         id,
			Weblink:    "https://www.speedrun.com/run/" + id,
			GameID:     "game1",
			CategoryID: "cat1",
			PlayerIdx:  []int{i},
			Duration:   d,
			VerifiedAt: feedBase.Add(time.Duration(i) * time.Hour),
		})
	}
	return runs
}

// newFeedServer serves a fixed world over httptest and hands back the
// base URL the client should be pointed at.
func newFeedServer(t *testing.T, runs []feedsim.Run) string {
	t.Helper()
	_ = logger.Init()

	world, err := feedsim.NewFixedWorld(feedGames(), feedPlayers(), runs)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	ts := httptest.NewServer(feedsim.NewServer(world, &feedsim.Stats{}).Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api/v1"
}

func newTestConfig(ctx context.Context, dir, baseURL string) *config.Config {
	cfg := config.New(ctx)
	cfg.DataDir = dir
	cfg.BaseURL = baseURL
	cfg.PageSize = 3 // force pagination over the five-run feed
	cfg.RetryAttempts = 2
	cfg.RateLimitRPS = 1000
	cfg.WorkerCount = 2
	cfg.QueueSize = 16
	return cfg
}

func journalIDs(ctx context.Context, dir string) []string {
	store := repository.NewFileStore(dir)
	events := store.LoadJournal(ctx)
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.RunID)
	}
	return ids
}

func TestServiceRun(t *testing.T) {
	Convey("Given a feed holding one record progression", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		baseURL := newFeedServer(t, progressionRuns())
		clock := feedBase.Add(6 * time.Hour)

		var out bytes.Buffer
		svc := app.New(
			app.WithConfig(newTestConfig(ctx, dir, baseURL)),
			app.WithNow(func() time.Time { return clock }),
			app.WithOutput(&out),
		)

		Convey("When the scanner runs once", func() {
			err := svc.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then the journal holds the reconstructed chain, newest first", func() {
				So(journalIDs(ctx, dir), ShouldResemble, []string{"run5", "run3", "run2", "run1"})
			})

			Convey("And run4 never qualifies", func() {
				So(journalIDs(ctx, dir), ShouldNotContain, "run4")
			})

			Convey("And the high-water mark is the newest verification time", func() {
				st := repository.NewFileStore(dir).LoadState(ctx)
				So(st.LastSeenEpoch, ShouldEqual, feedBase.Add(4*time.Hour).Unix())
			})

			Convey("And the rendered report carries both windows", func() {
				doc := out.String()
				So(doc, ShouldContainSubstring, "### Past hour")
				So(doc, ShouldContainSubstring, "### Past 24 hours")
				So(doc, ShouldContainSubstring, "Celestial Dash")
			})
		})
	})
}

func TestServiceRunIdempotent(t *testing.T) {
	Convey("Given a scanner that already processed the feed", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		baseURL := newFeedServer(t, progressionRuns())
		clock := feedBase.Add(6 * time.Hour)

		first := app.New(
			app.WithConfig(newTestConfig(ctx, dir, baseURL)),
			app.WithNow(func() time.Time { return clock }),
			app.WithOutput(new(bytes.Buffer)),
		)
		So(first.Run(ctx), ShouldBeNil)

		store := repository.NewFileStore(dir)
		journalBefore, err := os.ReadFile(store.JournalPath())
		So(err, ShouldBeNil)
		stateBefore := store.LoadState(ctx)

		Convey("When a second run covers the same feed", func() {
			second := app.New(
				app.WithConfig(newTestConfig(ctx, dir, baseURL)),
				app.WithNow(func() time.Time { return clock.Add(time.Minute) }),
				app.WithOutput(new(bytes.Buffer)),
			)
			So(second.Run(ctx), ShouldBeNil)

			Convey("Then the persisted record log is byte-identical", func() {
				journalAfter, err := os.ReadFile(store.JournalPath())
				So(err, ShouldBeNil)
				So(string(journalAfter), ShouldEqual, string(journalBefore))
			})

			Convey("And the high-water mark does not move past the true maximum", func() {
				So(store.LoadState(ctx).LastSeenEpoch, ShouldEqual, stateBefore.LastSeenEpoch)
			})
		})
	})
}

func TestCollectCurrent(t *testing.T) {
	Convey("Given a feed where one attempt tops its board", t, func() {
		ctx := context.Background()
		baseURL := newFeedServer(t, progressionRuns())
		clock := feedBase.Add(6 * time.Hour)

		svc := app.New(
			app.WithConfig(newTestConfig(ctx, t.TempDir(), baseURL)),
			app.WithNow(func() time.Time { return clock }),
		)

		Convey("When collecting current record holders", func() {
			attempts, err := svc.CollectCurrent(ctx, 7, 10)
			So(err, ShouldBeNil)

			Convey("Then only the current top of the board is returned", func() {
				So(len(attempts), ShouldEqual, 1)
				So(attempts[0].ID, ShouldEqual, "run5")
				So(attempts[0].GameName, ShouldEqual, "Celestial Dash")
			})
		})

		Convey("When the limit is zero", func() {
			attempts, err := svc.CollectCurrent(ctx, 7, 0)
			So(err, ShouldBeNil)

			Convey("Then nothing is collected", func() {
				So(attempts, ShouldBeEmpty)
			})
		})
	})
}
