package feedsim

import (
	"context"
	"fmt"
	"log"
	"time"
)

// verifyWorld checks the generated world for internal consistency
// before serving it.
func verifyWorld(ctx context.Context, w *World) error {
	log.Println("🔍 Verifying world...")

	if err := verifyFeedOrder(w); err != nil {
		return err
	}
	if err := verifyRunLookup(w); err != nil {
		return err
	}
	if err := verifyBoards(ctx, w); err != nil {
		return err
	}

	log.Println("✅ World verification passed")
	return nil
}

// verifyFeedOrder confirms the feed pages out every run, newest first.
func verifyFeedOrder(w *World) error {
	seen := 0
	var prev time.Time
	for offset := 0; ; {
		page := w.Feed(offset, MaxPageMax)
		if len(page) == 0 {
			break
		}
		for _, r := range page {
			if seen > 0 && r.VerifiedAt.After(prev) {
				return fmt.Errorf("feed out of order at offset %d: run %s verified after its predecessor", offset, r.ID)
			}
			prev = r.VerifiedAt
			seen++
		}
		offset += len(page)
	}

	if seen != len(w.runs) {
		return fmt.Errorf("feed returned %d runs, world has %d", seen, len(w.runs))
	}
	return nil
}

// verifyRunLookup confirms every run resolves through the detail lookup.
func verifyRunLookup(w *World) error {
	for i := range w.runs {
		id := w.runs[i].ID
		got, ok := w.RunByID(id)
		if !ok {
			return fmt.Errorf("run %s not resolvable by id", id)
		}
		if got.ID != id {
			return fmt.Errorf("run lookup for %s returned %s", id, got.ID)
		}
	}
	return nil
}

// verifyBoards rebuilds every unfiltered leaderboard and checks
// ordering and player-set uniqueness.
func verifyBoards(ctx context.Context, w *World) error {
	boards := 0
	for gi := range w.games {
		g := &w.games[gi]
		for ci := range g.Categories {
			levelIDs := []string{""}
			for li := range g.Levels {
				levelIDs = append(levelIDs, g.Levels[li].ID)
			}

			for _, levelID := range levelIDs {
				select {
				case <-ctx.Done():
					return fmt.Errorf("board verification cancelled: %w", ctx.Err())
				default:
				}

				rows := w.Board(g.ID, g.Categories[ci].ID, levelID, nil, 0)
				if err := verifyBoardRows(rows); err != nil {
					return fmt.Errorf("board %s/%s level %q: %w", g.ID, g.Categories[ci].ID, levelID, err)
				}
				boards++
			}
		}
	}

	log.Printf("✅ %d leaderboards consistent", boards)
	return nil
}

// verifyBoardRows checks one board: no player set twice, times never
// get faster down the table, ties share a place.
func verifyBoardRows(rows []PlacedRun) error {
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		key := playerSetKey(row.Run.PlayerIdx)
		if seen[key] {
			return fmt.Errorf("player set %s appears twice", key)
		}
		seen[key] = true

		if i == 0 {
			if row.Place != 1 {
				return fmt.Errorf("top row has place %d", row.Place)
			}
			continue
		}
		if row.Run.Duration < rows[i-1].Run.Duration {
			return fmt.Errorf("row %d faster than row %d", i, i-1)
		}
		if row.Run.Duration == rows[i-1].Run.Duration && row.Place != rows[i-1].Place {
			return fmt.Errorf("rows %d and %d tie on time but differ in place", i-1, i)
		}
	}
	return nil
}
