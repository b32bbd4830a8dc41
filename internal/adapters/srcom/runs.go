package srcom

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Run fetches one run with full embeds, for building a record entry.
func (c *Client) Run(ctx context.Context, id string) (*model.Attempt, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty run id", ErrRequestFailed)
	}

	url := fmt.Sprintf("%s/runs/%s?embed=game,category,players,level", c.baseURL, id)
	data, err := c.getData(ctx, endpointRun, url)
	if err != nil {
		return nil, err
	}

	var run runJSON
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	attempt := run.toAttempt()
	return &attempt, nil
}

// VerifiedAt fetches a run without embeds and returns its verification
// time. It satisfies the chain reconstructor's Resolver interface; board
// snapshots occasionally omit the timestamp and this fills the gap.
func (c *Client) VerifiedAt(ctx context.Context, id string) (time.Time, error) {
	if id == "" {
		return time.Time{}, fmt.Errorf("%w: empty run id", ErrRequestFailed)
	}

	url := fmt.Sprintf("%s/runs/%s", c.baseURL, id)
	data, err := c.getData(ctx, endpointRun, url)
	if err != nil {
		return time.Time{}, err
	}

	var run runJSON
	if err := json.Unmarshal(data, &run); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	t, ok := parseVerifyDate(run.Status.VerifyDate)
	if !ok {
		return time.Time{}, ErrNoVerifyDate
	}

	metrics.RecordTimestampBackfilled()
	return t, nil
}
