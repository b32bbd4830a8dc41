package srcom

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// envelope wraps every response body of the upstream API.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type namesJSON struct {
	International string `json:"international"`
}

type assetJSON struct {
	URI string `json:"uri"`
}

// resourceData is the embedded form of a game, category or level.
type resourceData struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Names  namesJSON            `json:"names"`
	Assets map[string]assetJSON `json:"assets"`
}

type timesJSON struct {
	PrimaryT *float64 `json:"primary_t"`
}

type statusJSON struct {
	Status     string `json:"status"`
	VerifyDate string `json:"verify-date"`
}

type playerJSON struct {
	Rel     string               `json:"rel"`
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Names   namesJSON            `json:"names"`
	Weblink string               `json:"weblink"`
	Assets  map[string]assetJSON `json:"assets"`
}

// runJSON is a run as returned by the feed and run-detail endpoints. Game,
// category, level and players are either plain id strings or embedded
// objects, depending on the request's embed parameter.
type runJSON struct {
	ID       string            `json:"id"`
	Weblink  string            `json:"weblink"`
	Game     json.RawMessage   `json:"game"`
	Category json.RawMessage   `json:"category"`
	Level    json.RawMessage   `json:"level"`
	Players  json.RawMessage   `json:"players"`
	Values   map[string]string `json:"values"`
	Times    timesJSON         `json:"times"`
	Status   statusJSON        `json:"status"`
}

type placedRunJSON struct {
	Place int     `json:"place"`
	Run   runJSON `json:"run"`
}

type leaderboardJSON struct {
	Runs []placedRunJSON `json:"runs"`
}

type variableValueJSON struct {
	Label string `json:"label"`
}

type variableJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Values struct {
		Values map[string]variableValueJSON `json:"values"`
	} `json:"values"`
}

// decodeResource accepts either a plain id string or an embedded
// {"data": {...}} object. The plain "name" field wins over
// names.international when both are present.
func decodeResource(raw json.RawMessage) (id, name string, data *resourceData) {
	if len(raw) == 0 {
		return "", "", nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, "", nil
	}

	var embedded struct {
		Data resourceData `json:"data"`
	}
	if err := json.Unmarshal(raw, &embedded); err != nil {
		return "", "", nil
	}

	name = embedded.Data.Names.International
	if embedded.Data.Name != "" {
		name = embedded.Data.Name
	}
	return embedded.Data.ID, name, &embedded.Data
}

// decodePlayers accepts the embedded {"data": [...]} form or a bare array.
func decodePlayers(raw json.RawMessage) []playerJSON {
	if len(raw) == 0 {
		return nil
	}

	var embedded struct {
		Data []playerJSON `json:"data"`
	}
	if err := json.Unmarshal(raw, &embedded); err == nil && embedded.Data != nil {
		return embedded.Data
	}

	var bare []playerJSON
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}
	return nil
}

// displayName picks a player's visible name: registered name, then the
// international name, then the raw id.
func displayName(p playerJSON) string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Names.International != "":
		return p.Names.International
	case p.ID != "":
		return p.ID
	default:
		return "unknown"
	}
}

// avatarURI picks a player's avatar, preferring the full image over the
// icon, normalized to a fetchable .png link.
func avatarURI(p playerJSON) string {
	raw := ""
	if a, ok := p.Assets["image"]; ok && a.URI != "" {
		raw = a.URI
	} else if a, ok := p.Assets["icon"]; ok && a.URI != "" {
		raw = a.URI
	}
	if raw == "" {
		return ""
	}
	return NormalizeUserImageURI(raw)
}

// coverURI walks the game's asset set smallest-first and normalizes the
// first hit.
func coverURI(game *resourceData) string {
	if game == nil {
		return ""
	}
	for _, key := range []string{"cover-tiny", "cover-small", "cover-medium", "cover-large", "icon"} {
		if a, ok := game.Assets[key]; ok && a.URI != "" {
			return NormalizeCoverURI(a.URI)
		}
	}
	return ""
}

// parseVerifyDate parses the feed's verification timestamps. Fractional
// seconds (and anything after them) are dropped; the result is UTC. The
// second return is false for absent or malformed values.
func parseVerifyDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i] + "Z"
	}
	t, err := time.Parse("2006-01-02T15:04:05Z", s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// toAttempt flattens a run into the domain shape. Missing durations become
// -1 and unparseable verification dates leave VerifiedAt zero; callers
// decide what to do with either.
func (r *runJSON) toAttempt() model.Attempt {
	gameID, gameName, gameData := decodeResource(r.Game)
	catID, catName, _ := decodeResource(r.Category)
	levelID, levelName, _ := decodeResource(r.Level)

	duration := -1.0
	if r.Times.PrimaryT != nil {
		duration = *r.Times.PrimaryT
	}

	var players []model.Player
	for _, p := range decodePlayers(r.Players) {
		players = append(players, model.Player{
			Name:    displayName(p),
			Weblink: p.Weblink,
			Image:   avatarURI(p),
		})
	}

	verifiedAt, _ := parseVerifyDate(r.Status.VerifyDate)

	return model.Attempt{
		ID:           r.ID,
		Weblink:      r.Weblink,
		GameID:       gameID,
		GameName:     gameName,
		GameCover:    coverURI(gameData),
		CategoryID:   catID,
		CategoryName: catName,
		LevelID:      levelID,
		LevelName:    levelName,
		Values:       r.Values,
		Players:      players,
		Duration:     duration,
		VerifiedAt:   verifiedAt,
		VerifiedISO:  r.Status.VerifyDate,
	}
}

// toSnapshotRow keeps only what chain reconstruction needs.
func (pr *placedRunJSON) toSnapshotRow() model.SnapshotRow {
	verifiedAt, _ := parseVerifyDate(pr.Run.Status.VerifyDate)
	duration := -1.0
	if pr.Run.Times.PrimaryT != nil {
		duration = *pr.Run.Times.PrimaryT
	}
	return model.SnapshotRow{
		RunID:      pr.Run.ID,
		Duration:   duration,
		VerifiedAt: verifiedAt,
	}
}
