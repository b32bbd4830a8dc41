// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Player identifies one participant on an attempt. Fields mirror the
// players_data entries of the persisted record log.
type Player struct {
	Name    string `json:"name"`
	Weblink string `json:"weblink"`
	Image   string `json:"image"`
}

// Attempt is one verified run observed on the remote feed or through a
// detail lookup. Immutable once parsed.
type Attempt struct {
	ID           string
	Weblink      string
	GameID       string
	GameName     string
	GameCover    string
	CategoryID   string
	CategoryName string
	LevelID      string
	LevelName    string
	Values       map[string]string // variable id -> value id
	Players      []Player
	Duration     float64   // primary time in seconds; negative when unknown
	VerifiedAt   time.Time // zero when the feed omitted the timestamp
	VerifiedISO  string    // original timestamp text, kept for the log
}

// HasDuration reports whether the attempt carries a usable primary time.
func (a *Attempt) HasDuration() bool { return a.Duration >= 0 }

// HasVerifiedAt reports whether the verification timestamp is known.
func (a *Attempt) HasVerifiedAt() bool { return !a.VerifiedAt.IsZero() }

// PlayerNames joins the display names for the record log's players column.
func (a *Attempt) PlayerNames() string {
	names := make([]string, 0, len(a.Players))
	for _, p := range a.Players {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

// SnapshotRow is one ranked leaderboard entry reduced to what the
// record replay needs.
type SnapshotRow struct {
	RunID      string
	Duration   float64
	VerifiedAt time.Time
}

// RecordEvent is one entry of the persisted record log. The JSON field
// names are the on-disk contract and must not change.
type RecordEvent struct {
	RunID         string   `json:"run_id"`
	VerifiedEpoch int64    `json:"verified_epoch"`
	VerifiedISO   string   `json:"verified_iso"`
	Game          string   `json:"game"`
	GameCover     string   `json:"game_cover"`
	Category      string   `json:"category"`
	Level         string   `json:"level"`
	Subcats       string   `json:"subcats"`
	PrimaryT      float64  `json:"primary_t"`
	Players       string   `json:"players"`
	PlayersData   []Player `json:"players_data,omitempty"`
	Weblink       string   `json:"weblink"`
}

// VerifiedTime converts the stored epoch to UTC time.
func (e *RecordEvent) VerifiedTime() time.Time {
	return time.Unix(e.VerifiedEpoch, 0).UTC()
}
