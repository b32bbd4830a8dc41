package srcom

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/partition"
)

// Leaderboard fetches the current top rows for a partition, best first.
// It satisfies the oracle's Source interface.
func (c *Client) Leaderboard(ctx context.Context, p partition.Partition, top int) ([]model.SnapshotRow, error) {
	data, err := c.getData(ctx, endpointLeaderboard, c.leaderboardURL(p, top))
	if err != nil {
		return nil, err
	}

	var lb leaderboardJSON
	if err := json.Unmarshal(data, &lb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	rows := make([]model.SnapshotRow, 0, len(lb.Runs))
	for i := range lb.Runs {
		rows = append(rows, lb.Runs[i].toSnapshotRow())
	}
	return rows, nil
}

// leaderboardURL builds the board address: level boards and full-game
// boards have different path shapes, and every variable value narrows the
// board via a var- query parameter.
func (c *Client) leaderboardURL(p partition.Partition, top int) string {
	var sb strings.Builder

	if p.LevelID != "" {
		fmt.Fprintf(&sb, "%s/leaderboards/%s/level/%s/%s?top=%d", c.baseURL, p.GameID, p.LevelID, p.CategoryID, top)
	} else {
		fmt.Fprintf(&sb, "%s/leaderboards/%s/category/%s?top=%d", c.baseURL, p.GameID, p.CategoryID, top)
	}

	for _, pair := range p.SortedValues() {
		fmt.Fprintf(&sb, "&var-%s=%s", pair.Variable, pair.Value)
	}
	return sb.String()
}
