package feedsim

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/okian/podium/pkg/logger"
)

// Wire documents matching the speedrun.com v1 API shapes.
type dataEnvelope struct {
	Data any `json:"data"`
}

type pagedEnvelope struct {
	Data       any           `json:"data"`
	Pagination paginationDoc `json:"pagination"`
}

type paginationDoc struct {
	Offset int `json:"offset"`
	Max    int `json:"max"`
	Size   int `json:"size"`
}

type errorDoc struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type namesDoc struct {
	International string `json:"international"`
}

type assetDoc struct {
	URI string `json:"uri"`
}

type resourceDoc struct {
	ID     string              `json:"id"`
	Names  namesDoc            `json:"names"`
	Assets map[string]assetDoc `json:"assets,omitempty"`
}

type playerDoc struct {
	Rel     string              `json:"rel"`
	ID      string              `json:"id,omitempty"`
	Name    string              `json:"name,omitempty"`
	Names   *namesDoc           `json:"names,omitempty"`
	Weblink string              `json:"weblink,omitempty"`
	Assets  map[string]assetDoc `json:"assets,omitempty"`
}

type timesDoc struct {
	PrimaryT float64 `json:"primary_t"`
}

type statusDoc struct {
	Status     string `json:"status"`
	VerifyDate string `json:"verify-date,omitempty"`
}

type runDoc struct {
	ID       string            `json:"id"`
	Weblink  string            `json:"weblink"`
	Game     any               `json:"game"`
	Category any               `json:"category"`
	Level    any               `json:"level"`
	Players  any               `json:"players"`
	Values   map[string]string `json:"values"`
	Times    timesDoc          `json:"times"`
	Status   statusDoc         `json:"status"`
}

type placedRunDoc struct {
	Place int    `json:"place"`
	Run   runDoc `json:"run"`
}

type boardDoc struct {
	Runs []placedRunDoc `json:"runs"`
}

type variableDoc struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Values struct {
		Values map[string]variableValueDoc `json:"values"`
	} `json:"values"`
}

type variableValueDoc struct {
	Label string `json:"label"`
}

// Server serves a generated world over the speedrun.com v1 wire format.
type Server struct {
	world  *World
	stats  *Stats
	logger logger.Logger
}

// NewServer creates the HTTP facade over a world.
func NewServer(world *World, stats *Stats) *Server {
	return &Server{
		world:  world,
		stats:  stats,
		logger: logger.Get().Named("feedsim"),
	}
}

// Register attaches the API routes to a mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/runs", s.handleFeed)
	mux.HandleFunc("/api/v1/runs/", s.handleRun)
	mux.HandleFunc("/api/v1/leaderboards/", s.handleLeaderboard)
	mux.HandleFunc("/api/v1/categories/", s.handleVariables)
	mux.HandleFunc("/healthz", s.handleHealth)
}

// Handler returns a ready-to-serve handler with all routes attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// handleFeed serves GET /api/v1/runs: the verified-runs feed, newest
// first, paged by offset/max.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	atomic.AddInt64(&s.stats.FeedRequests, 1)

	q := r.URL.Query()
	offset := intParam(q, "offset", 0)
	max := intParam(q, "max", DefaultPageMax)
	embeds := parseEmbeds(q)

	page := s.world.Feed(offset, max)
	docs := make([]runDoc, len(page))
	for i, run := range page {
		docs[i] = s.buildRunDoc(run, embeds, false)
	}

	s.logger.Debug(r.Context(), "feed page served",
		logger.Int("offset", offset),
		logger.Int("size", len(docs)))
	writeJSON(w, StatusOK, pagedEnvelope{
		Data:       docs,
		Pagination: paginationDoc{Offset: offset, Max: max, Size: len(docs)},
	})
}

// handleRun serves GET /api/v1/runs/{id}. The detail endpoint always
// carries the verification date, even for runs hidden on boards.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	atomic.AddInt64(&s.stats.RunRequests, 1)

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeAPIError(w, StatusNotFound, "run not found")
		return
	}

	run, ok := s.world.RunByID(id)
	if !ok {
		writeAPIError(w, StatusNotFound, "run not found")
		return
	}
	writeData(w, s.buildRunDoc(run, parseEmbeds(r.URL.Query()), false))
}

// handleLeaderboard serves the two board shapes:
//
//	GET /api/v1/leaderboards/{game}/category/{category}
//	GET /api/v1/leaderboards/{game}/level/{level}/{category}
//
// with optional top and var-{id}={value} filters.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	atomic.AddInt64(&s.stats.BoardRequests, 1)

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/leaderboards/")
	parts := strings.Split(rest, "/")

	var gameID, categoryID, levelID string
	switch {
	case len(parts) == 3 && parts[1] == "category":
		gameID, categoryID = parts[0], parts[2]
	case len(parts) == 4 && parts[1] == "level":
		gameID, levelID, categoryID = parts[0], parts[2], parts[3]
	default:
		writeAPIError(w, StatusNotFound, "leaderboard not found")
		return
	}

	if _, ok := s.world.GameByID(gameID); !ok {
		writeAPIError(w, StatusNotFound, "game not found")
		return
	}

	q := r.URL.Query()
	top := intParam(q, "top", 0)
	rows := s.world.Board(gameID, categoryID, levelID, varFilters(q), top)

	docs := make([]placedRunDoc, len(rows))
	for i, pr := range rows {
		docs[i] = placedRunDoc{
			Place: pr.Place,
			Run:   s.buildRunDoc(pr.Run, nil, pr.Run.HideBoardDate),
		}
	}
	writeData(w, boardDoc{Runs: docs})
}

// handleVariables serves GET /api/v1/categories/{id}/variables.
func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	atomic.AddInt64(&s.stats.VariableRequests, 1)

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/categories/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "variables" {
		writeAPIError(w, StatusNotFound, "category not found")
		return
	}

	cat, ok := s.world.CategoryByID(parts[0])
	if !ok {
		writeAPIError(w, StatusNotFound, "category not found")
		return
	}

	docs := make([]variableDoc, len(cat.Variables))
	for i, v := range cat.Variables {
		doc := variableDoc{ID: v.ID, Name: v.Name}
		doc.Values.Values = make(map[string]variableValueDoc, len(v.Values))
		for valueID, label := range v.Values {
			doc.Values.Values[valueID] = variableValueDoc{Label: label}
		}
		docs[i] = doc
	}
	writeData(w, docs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusOK, map[string]string{"status": "ok"})
}

// buildRunDoc renders a run in wire form. With embeds the game,
// category, level and players are expanded in place; without, they
// shrink to plain id references the way the real API does.
func (s *Server) buildRunDoc(run Run, embeds map[string]bool, hideDate bool) runDoc {
	doc := runDoc{
		ID:      run.ID,
		Weblink: run.Weblink,
		Values:  run.Values,
		Times:   timesDoc{PrimaryT: run.Duration},
		Status:  statusDoc{Status: "verified"},
	}
	if !hideDate {
		doc.Status.VerifyDate = run.VerifiedAt.UTC().Format("2006-01-02T15:04:05Z")
	}

	game, _ := s.world.GameByID(run.GameID)
	if embeds["game"] && game != nil {
		doc.Game = dataEnvelope{Data: resourceDoc{
			ID:     game.ID,
			Names:  namesDoc{International: game.Name},
			Assets: map[string]assetDoc{"cover-tiny": {URI: game.CoverURI}},
		}}
	} else {
		doc.Game = run.GameID
	}

	if embeds["category"] && game != nil {
		name := ""
		for i := range game.Categories {
			if game.Categories[i].ID == run.CategoryID {
				name = game.Categories[i].Name
				break
			}
		}
		doc.Category = dataEnvelope{Data: resourceDoc{
			ID:    run.CategoryID,
			Names: namesDoc{International: name},
		}}
	} else {
		doc.Category = run.CategoryID
	}

	switch {
	case run.LevelID == "":
		doc.Level = nil
	case embeds["level"] && game != nil:
		name := ""
		for i := range game.Levels {
			if game.Levels[i].ID == run.LevelID {
				name = game.Levels[i].Name
				break
			}
		}
		doc.Level = dataEnvelope{Data: resourceDoc{
			ID:    run.LevelID,
			Names: namesDoc{International: name},
		}}
	default:
		doc.Level = run.LevelID
	}

	players := s.world.PlayersOf(run)
	docs := make([]playerDoc, len(players))
	for i, p := range players {
		if p.Guest {
			docs[i] = playerDoc{Rel: "guest", Name: p.Name}
			continue
		}
		if embeds["players"] {
			docs[i] = playerDoc{
				Rel:     "user",
				ID:      p.ID,
				Names:   &namesDoc{International: p.Name},
				Weblink: p.Weblink,
				Assets: map[string]assetDoc{
					"image": {URI: p.Image},
					"icon":  {URI: p.Image},
				},
			}
		} else {
			docs[i] = playerDoc{Rel: "user", ID: p.ID}
		}
	}
	if embeds["players"] {
		doc.Players = dataEnvelope{Data: docs}
	} else {
		doc.Players = docs
	}

	return doc
}

func parseEmbeds(q map[string][]string) map[string]bool {
	embeds := make(map[string]bool)
	for _, raw := range q["embed"] {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				embeds[name] = true
			}
		}
	}
	return embeds
}

func intParam(q map[string][]string, key string, fallback int) int {
	vals := q[key]
	if len(vals) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return fallback
	}
	return n
}

// varFilters extracts var-{id}={value} query parameters.
func varFilters(q map[string][]string) map[string]string {
	filters := make(map[string]string)
	for key, vals := range q {
		if strings.HasPrefix(key, "var-") && len(vals) > 0 {
			filters[strings.TrimPrefix(key, "var-")] = vals[0]
		}
	}
	return filters
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, StatusOK, dataEnvelope{Data: v})
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorDoc{Status: status, Message: message})
}
