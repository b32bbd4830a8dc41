package srcom

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/podium/internal/domain/model"
)

// RecentlyVerified returns one page of the newest-first verified feed,
// with game, category, level and players embedded.
func (c *Client) RecentlyVerified(ctx context.Context, offset, max int) ([]model.Attempt, error) {
	url := fmt.Sprintf(
		"%s/runs?status=verified&orderby=verify-date&direction=desc&embed=game,category,players,level&max=%d&offset=%d",
		c.baseURL, max, offset,
	)

	data, err := c.getData(ctx, endpointFeed, url)
	if err != nil {
		return nil, err
	}

	var runs []runJSON
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	attempts := make([]model.Attempt, 0, len(runs))
	for i := range runs {
		attempts = append(attempts, runs[i].toAttempt())
	}
	return attempts, nil
}
