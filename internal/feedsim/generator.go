package feedsim

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/podium/internal/domain/partition"
	"github.com/okian/podium/pkg/logger"
)

// Name pools for generated resources.
var (
	gameNamePool = []string{
		"Celestial Dash", "Cavern Sprint", "Neon Drift", "Frostbite Peak",
		"Sunken Citadel", "Clockwork Canyon", "Ember Vale", "Static Skies",
	}
	categoryNamePool = []string{"Any%", "100%", "Glitchless", "Low%", "All Bosses"}
	levelNamePool    = []string{
		"Verdant Ruins", "Mirror Halls", "Shifting Sands",
		"Obsidian Keep", "Skyline Run", "Old Docks",
	}
	playerNamePool = []string{
		"PixelPacer", "FrameCount", "SplitSecond", "WarpWhistle",
		"RouteZero", "TurboSnail", "InputBuffer", "LagSpike",
		"GoldSplit", "ResetKing", "SoftLock", "CoyoteTime",
	}
	variablePool = []struct {
		name   string
		labels []string
	}{
		{"Difficulty", []string{"Easy", "Normal", "Hard"}},
		{"Version", []string{"NTSC", "PAL"}},
		{"Character", []string{"Knight", "Rogue", "Mage"}},
	}
)

// World is the simulated state served over HTTP. Games and players are
// immutable once generated; runs grow through Advance.
type World struct {
	mu      sync.RWMutex
	games   []Game
	players []Player
	runs    []Run          // storage order: oldest first
	runIdx  map[string]int // run id -> index into runs
	bests   map[string]float64
	rng     *mrand.Rand
	lastAt  time.Time
}

// NewWorld generates a simulated world. The same seed reproduces the
// same timeline structure (durations, timing, record runs); resource
// ids differ between generations.
func NewWorld(ctx context.Context, config *Config, stats *Stats) (*World, error) {
	seed := config.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	logger.Get().Info(ctx, "generating world",
		logger.Int64("seed", seed),
		logger.Int("games", config.Games),
		logger.Int("players", config.Players),
		logger.Int("runs", config.Runs))

	if config.Games < 1 || config.Players < 1 || config.Runs < 0 {
		return nil, fmt.Errorf("world needs at least one game and one player")
	}

	w := &World{
		runIdx: make(map[string]int),
		bests:  make(map[string]float64),
		rng:    mrand.New(mrand.NewSource(seed)),
	}

	w.generatePlayers(config.Players)
	w.generateGames(config.Games)

	start := time.Now().UTC().Add(-config.Span).Truncate(time.Second)
	if err := w.generateRuns(ctx, config.Runs, start, config.Span, stats); err != nil {
		return nil, err
	}

	stats.GamesGenerated = len(w.games)
	stats.PlayersGenerated = len(w.players)
	stats.RunsGenerated = len(w.runs)
	stats.PartitionsSeeded = len(w.bests)

	logger.Get().Info(ctx, "world generated",
		logger.Int("brackets", len(w.bests)),
		logger.Int("records", stats.RecordRuns))
	return w, nil
}

// NewFixedWorld wraps a handcrafted universe instead of generating one.
// Runs are reordered oldest first, indexed, and replayed so the Record
// flags and bracket bests line up with the given timeline; Advance
// continues from the newest run. Consumers test against exact, known
// feeds this way.
func NewFixedWorld(games []Game, players []Player, runs []Run) (*World, error) {
	if len(games) == 0 || len(players) == 0 {
		return nil, fmt.Errorf("world needs at least one game and one player")
	}

	w := &World{
		games:   games,
		players: players,
		runs:    append([]Run(nil), runs...),
		runIdx:  make(map[string]int, len(runs)),
		bests:   make(map[string]float64, len(runs)),
		rng:     mrand.New(mrand.NewSource(randomSeed())),
	}

	sort.SliceStable(w.runs, func(i, j int) bool {
		return w.runs[i].VerifiedAt.Before(w.runs[j].VerifiedAt)
	})

	for i := range w.runs {
		r := &w.runs[i]
		if r.ID == "" {
			return nil, fmt.Errorf("run %d has no id", i)
		}
		if _, dup := w.runIdx[r.ID]; dup {
			return nil, fmt.Errorf("duplicate run id %q", r.ID)
		}
		w.runIdx[r.ID] = i

		key := partition.Partition{
			GameID:     r.GameID,
			CategoryID: r.CategoryID,
			LevelID:    r.LevelID,
			Values:     r.Values,
		}.Key()
		best, ok := w.bests[key]
		r.Record = !ok || r.Duration <= best
		if !ok || r.Duration < best {
			w.bests[key] = r.Duration
		}
		if r.VerifiedAt.After(w.lastAt) {
			w.lastAt = r.VerifiedAt
		}
	}
	return w, nil
}

// randomSeed draws a seed from the system entropy pool.
func randomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63)) //nolint:gosec // value is a seed, not a credential
}

func (w *World) generatePlayers(n int) {
	w.players = make([]Player, n)
	for i := 0; i < n; i++ {
		id := uuid.New().String()
		name := playerNamePool[i%len(playerNamePool)]
		if i >= len(playerNamePool) {
			name = fmt.Sprintf("%s%d", name, i/len(playerNamePool)+1)
		}

		p := Player{ID: id, Name: name}
		if w.rng.Intn(guestShare) == 0 {
			p.Guest = true
			p.ID = ""
		} else {
			p.Weblink = "https://www.speedrun.com/user/" + name
			p.Image = fmt.Sprintf("https://www.speedrun.com/userasset/%s/image?v=%d", id, w.rng.Intn(9)+1)
		}
		w.players[i] = p
	}
}

func (w *World) generateGames(n int) {
	w.games = make([]Game, n)
	for i := 0; i < n; i++ {
		name := gameNamePool[i%len(gameNamePool)]
		if i >= len(gameNamePool) {
			name = fmt.Sprintf("%s %d", name, i/len(gameNamePool)+1)
		}
		id := uuid.New().String()

		g := Game{
			ID:       id,
			Name:     name,
			CoverURI: fmt.Sprintf("https://www.speedrun.com/gameasset/%s/cover?v=%d", id, w.rng.Intn(9)+1),
		}

		numCats := 2 + w.rng.Intn(3)
		for c := 0; c < numCats; c++ {
			cat := Category{
				ID:   uuid.New().String(),
				Name: categoryNamePool[c%len(categoryNamePool)],
			}
			numVars := w.rng.Intn(3)
			for v := 0; v < numVars; v++ {
				spec := variablePool[(c+v)%len(variablePool)]
				vr := Variable{
					ID:     uuid.New().String(),
					Name:   spec.name,
					Values: make(map[string]string, len(spec.labels)),
				}
				for _, label := range spec.labels {
					valueID := uuid.New().String()
					vr.Values[valueID] = label
					vr.ValueIDs = append(vr.ValueIDs, valueID)
				}
				cat.Variables = append(cat.Variables, vr)
			}
			g.Categories = append(g.Categories, cat)
		}

		// Half the games carry individual-level boards
		if w.rng.Intn(2) == 0 {
			numLevels := 2 + w.rng.Intn(3)
			for l := 0; l < numLevels; l++ {
				g.Levels = append(g.Levels, Level{
					ID:   uuid.New().String(),
					Name: levelNamePool[l%len(levelNamePool)],
				})
			}
		}

		w.games[i] = g
	}
}

// generateRuns lays n runs over the span, oldest first, with jittered
// but strictly increasing verification times.
func (w *World) generateRuns(ctx context.Context, n int, start time.Time, span time.Duration, stats *Stats) error {
	if n == 0 {
		w.lastAt = start
		return nil
	}

	step := span / time.Duration(n)
	if step < time.Second {
		step = time.Second
	}

	at := start
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("world generation cancelled: %w", ctx.Err())
		default:
		}

		jitter := time.Duration(w.rng.Int63n(int64(step))) - step/2
		inc := (step + jitter).Truncate(time.Second)
		if inc < time.Second {
			inc = time.Second
		}
		at = at.Add(inc)

		run := w.generateSingleRun(at)
		w.runIdx[run.ID] = len(w.runs)
		w.runs = append(w.runs, run)
		w.lastAt = at
		if run.Record {
			stats.RecordRuns++
		}
	}
	return nil
}

// generateSingleRun creates one run at the given verification time.
func (w *World) generateSingleRun(at time.Time) Run {
	g := &w.games[w.rng.Intn(len(w.games))]
	cat := &g.Categories[w.rng.Intn(len(g.Categories))]

	levelID := ""
	if len(g.Levels) > 0 && w.rng.Intn(levelShare) == 0 {
		levelID = g.Levels[w.rng.Intn(len(g.Levels))].ID
	}

	values := make(map[string]string, len(cat.Variables))
	for _, v := range cat.Variables {
		values[v.ID] = v.ValueIDs[w.rng.Intn(len(v.ValueIDs))]
	}

	key := partition.Partition{
		GameID:     g.ID,
		CategoryID: cat.ID,
		LevelID:    levelID,
		Values:     values,
	}.Key()
	duration, record := w.rollDuration(key)

	playerIdx := []int{w.rng.Intn(len(w.players))}
	if len(w.players) > 1 && w.rng.Intn(coopShare) == 0 {
		second := w.rng.Intn(len(w.players))
		if second == playerIdx[0] {
			second = (second + 1) % len(w.players)
		}
		playerIdx = append(playerIdx, second)
	}

	id := uuid.New().String()
	return Run{
		ID:            id,
		Weblink:       "https://www.speedrun.com/run/" + id,
		GameID:        g.ID,
		CategoryID:    cat.ID,
		LevelID:       levelID,
		Values:        values,
		PlayerIdx:     playerIdx,
		Duration:      duration,
		VerifiedAt:    at,
		Record:        record,
		HideBoardDate: w.rng.Intn(hiddenDateShare) == 0,
	}
}

// rollDuration draws where a run lands against its bracket's current
// best. The first run of a bracket sets the baseline and counts as a
// record.
func (w *World) rollDuration(key string) (duration float64, record bool) {
	best, ok := w.bests[key]
	if !ok {
		d := roundMillis(baseDurationMin + w.rng.Float64()*baseDurationRange)
		w.bests[key] = d
		return d, true
	}

	var d float64
	switch w.rng.Intn(caseCount) {
	case caseMidPack, caseMidPackToo:
		// Mid-pack finishes (1.05x - 1.30x) - most common
		d = best * (midPackMin + w.rng.Float64()*midPackRange)
	case caseBackOfPack:
		// Far off the pace (1.30x - 2.00x)
		d = best * (backOfPackMin + w.rng.Float64()*backOfPackRange)
	case caseNearMiss:
		// Just short of the record (1.001x - 1.05x)
		d = best * (nearMissMin + w.rng.Float64()*nearMissRange)
	case caseSmallBreak:
		// Record by a hair (0.970x - 0.999x)
		d = best * (smallBreakMin + w.rng.Float64()*smallBreakRange)
	case caseBigBreak:
		// Record smashed (0.850x - 0.970x) - rare
		d = best * (bigBreakMin + w.rng.Float64()*bigBreakRange)
	case caseTie:
		// Exact tie with the standing record - rare
		return best, true
	default:
		// Anywhere around the record (0.90x - 1.50x)
		d = best * (wildcardMin + w.rng.Float64()*wildcardRange)
	}

	d = roundMillis(d)
	if d <= 0 {
		d = roundMillis(best)
	}
	record = d <= best
	if d < best {
		w.bests[key] = d
	}
	return d, record
}

// roundMillis trims a duration to millisecond precision, matching the
// feed's primary_t values.
func roundMillis(d float64) float64 {
	return math.Round(d*1000.0) / 1000.0
}

// Advance appends n freshly verified runs a few seconds apart after the
// newest timeline entry (or now, whichever is later) and reports how
// many of them were records.
func (w *World) Advance(n int) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	at := w.lastAt
	if now := time.Now().UTC().Truncate(time.Second); now.After(at) {
		at = now
	}

	records := 0
	for i := 0; i < n; i++ {
		at = at.Add(time.Duration(1+w.rng.Intn(20)) * time.Second)
		run := w.generateSingleRun(at)
		w.runIdx[run.ID] = len(w.runs)
		w.runs = append(w.runs, run)
		w.lastAt = at
		if run.Record {
			records++
		}
	}
	return records
}
