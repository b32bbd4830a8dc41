// Package partition defines the identity of one independently ranked
// bracket of the remote feed and its canonical cache key.
package partition

import (
	"sort"
	"strings"

	model "github.com/okian/podium/internal/domain/model"
)

// Partition identifies one bracket: a game, a category, an optional
// level, and the variable values that split the category further. Two
// attempts compete against each other iff their partitions are equal.
type Partition struct {
	GameID     string
	CategoryID string
	LevelID    string
	Values     map[string]string // variable id -> value id
}

// Pair is one variable assignment of a partition.
type Pair struct {
	Variable string
	Value    string
}

// FromAttempt extracts the partition an attempt competes in. The value
// map is shared with the attempt, which is immutable once parsed.
func FromAttempt(a *model.Attempt) Partition {
	return Partition{
		GameID:     a.GameID,
		CategoryID: a.CategoryID,
		LevelID:    a.LevelID,
		Values:     a.Values,
	}
}

// Complete reports whether the partition identifies a rankable bracket.
// Attempts without a game or category cannot belong to any leaderboard.
func (p Partition) Complete() bool {
	return p.GameID != "" && p.CategoryID != ""
}

// SortedValues returns the variable assignments ordered by variable id.
// The ordering makes Key and the snapshot URLs deterministic.
func (p Partition) SortedValues() []Pair {
	if len(p.Values) == 0 {
		return nil
	}
	pairs := make([]Pair, 0, len(p.Values))
	for id, val := range p.Values {
		pairs = append(pairs, Pair{Variable: id, Value: val})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Variable < pairs[j].Variable })
	return pairs
}

// Key returns the canonical identity string:
//
//	game|category|level|var1=val1&var2=val2&
//
// Absent components stay empty and every pair ends with '&'. The result
// is independent of map iteration order, so equal partitions always
// collapse onto one cache entry.
func (p Partition) Key() string {
	var b strings.Builder
	b.WriteString(p.GameID)
	b.WriteByte('|')
	b.WriteString(p.CategoryID)
	b.WriteByte('|')
	b.WriteString(p.LevelID)
	b.WriteByte('|')
	for _, kv := range p.SortedValues() {
		b.WriteString(kv.Variable)
		b.WriteByte('=')
		b.WriteString(kv.Value)
		b.WriteByte('&')
	}
	return b.String()
}
