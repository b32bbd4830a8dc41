package feedsim

import "time"

// Config holds the shape of the simulated world.
type Config struct {
	Addr    string        // Listen address
	Games   int           // Number of games in the world
	Players int           // Size of the player pool
	Runs    int           // Number of verified runs on the timeline
	Span    time.Duration // How far back the timeline reaches
	Seed    int64         // World seed; 0 picks a random one
}

// Game is one simulated game with its boards.
type Game struct {
	ID         string
	Name       string
	CoverURI   string
	Categories []Category
	Levels     []Level
}

// Category is one ranked category of a game.
type Category struct {
	ID        string
	Name      string
	Variables []Variable
}

// Variable splits a category into narrower brackets. ValueIDs keeps the
// generated ids in a stable order for deterministic draws.
type Variable struct {
	ID       string
	Name     string
	Values   map[string]string // value id -> label
	ValueIDs []string
}

// Level is one individual-level board of a game.
type Level struct {
	ID   string
	Name string
}

// Player is one member of the simulated player pool. Guests have a
// display name but no account.
type Player struct {
	ID      string
	Name    string
	Weblink string
	Image   string
	Guest   bool
}

// Run is one verified run on the timeline.
type Run struct {
	ID         string
	Weblink    string
	GameID     string
	CategoryID string
	LevelID    string // empty for full-game runs
	Values     map[string]string
	PlayerIdx  []int // indices into the world's player pool
	Duration   float64
	VerifiedAt time.Time
	Record     bool // run matched or beat its bracket's best when verified

	// HideBoardDate drops the verification date from leaderboard rows
	// only; the run detail endpoint always carries it.
	HideBoardDate bool
}

// PlacedRun is one assembled leaderboard row.
type PlacedRun struct {
	Place int
	Run   Run
}

// Stats holds world and serving statistics.
type Stats struct {
	GamesGenerated   int
	PlayersGenerated int
	RunsGenerated    int
	RecordRuns       int
	PartitionsSeeded int

	// Request counters, updated atomically by the handlers.
	FeedRequests     int64
	BoardRequests    int64
	RunRequests      int64
	VariableRequests int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
