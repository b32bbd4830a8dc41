package feedsim

import (
	"sort"
	"strconv"
	"strings"
)

// Feed returns a page of runs ordered by verification date, newest
// first, mirroring the verified-runs feed.
func (w *World) Feed(offset, max int) []Run {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if max < 1 {
		max = DefaultPageMax
	}
	if max > MaxPageMax {
		max = MaxPageMax
	}

	page := make([]Run, 0, max)
	for i := len(w.runs) - 1 - offset; i >= 0 && len(page) < max; i-- {
		page = append(page, w.runs[i])
	}
	return page
}

// RunByID looks up a single run.
func (w *World) RunByID(id string) (Run, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i, ok := w.runIdx[id]
	if !ok {
		return Run{}, false
	}
	return w.runs[i], true
}

// GameByID looks up a game.
func (w *World) GameByID(id string) (*Game, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for i := range w.games {
		if w.games[i].ID == id {
			return &w.games[i], true
		}
	}
	return nil, false
}

// CategoryByID looks up a category across all games.
func (w *World) CategoryByID(id string) (*Category, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for gi := range w.games {
		for ci := range w.games[gi].Categories {
			if w.games[gi].Categories[ci].ID == id {
				return &w.games[gi].Categories[ci], true
			}
		}
	}
	return nil, false
}

// PlayersOf resolves a run's player indices to player records.
func (w *World) PlayersOf(r Run) []Player {
	w.mu.RLock()
	defer w.mu.RUnlock()

	players := make([]Player, 0, len(r.PlayerIdx))
	for _, idx := range r.PlayerIdx {
		if idx >= 0 && idx < len(w.players) {
			players = append(players, w.players[idx])
		}
	}
	return players
}

// Board assembles a leaderboard: the best run per player set, ordered
// fastest first. levelID "" selects the full-game board, which never
// includes level runs. filters narrow the board to runs whose values
// include every listed variable assignment. top > 0 caps the rows.
func (w *World) Board(gameID, categoryID, levelID string, filters map[string]string, top int) []PlacedRun {
	w.mu.RLock()
	defer w.mu.RUnlock()

	best := make(map[string]int)
	for i := range w.runs {
		r := &w.runs[i]
		if r.GameID != gameID || r.CategoryID != categoryID || r.LevelID != levelID {
			continue
		}
		if !matchesFilters(r.Values, filters) {
			continue
		}
		key := playerSetKey(r.PlayerIdx)
		if prev, ok := best[key]; !ok || w.better(i, prev) {
			best[key] = i
		}
	}

	order := make([]int, 0, len(best))
	for _, i := range best {
		order = append(order, i)
	}
	sort.Slice(order, func(a, b int) bool {
		return w.better(order[a], order[b])
	})
	if top > 0 && len(order) > top {
		order = order[:top]
	}

	rows := make([]PlacedRun, 0, len(order))
	for i, runIdx := range order {
		place := i + 1
		// Equal times share a place
		if i > 0 && w.runs[runIdx].Duration == rows[i-1].Run.Duration {
			place = rows[i-1].Place
		}
		rows = append(rows, PlacedRun{Place: place, Run: w.runs[runIdx]})
	}
	return rows
}

// better orders board candidates: faster first, earlier verification
// breaks time ties, run id breaks the rest.
func (w *World) better(a, b int) bool {
	ra, rb := &w.runs[a], &w.runs[b]
	if ra.Duration != rb.Duration {
		return ra.Duration < rb.Duration
	}
	if !ra.VerifiedAt.Equal(rb.VerifiedAt) {
		return ra.VerifiedAt.Before(rb.VerifiedAt)
	}
	return ra.ID < rb.ID
}

func matchesFilters(values, filters map[string]string) bool {
	for k, v := range filters {
		if values[k] != v {
			return false
		}
	}
	return true
}

// playerSetKey canonicalizes a player-index set so co-op teams dedup
// regardless of listing order.
func playerSetKey(idx []int) string {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
