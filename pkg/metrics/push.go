package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the custom registry to a Pushgateway. The scanner is a batch
// process with no scrape endpoint, so each run pushes its registry once
// before exiting. An empty gateway URL is a no-op.
func Push(ctx context.Context, gatewayURL, jobName string) error {
	if gatewayURL == "" {
		return nil
	}
	if jobName == "" {
		jobName = "podium"
	}
	if err := push.New(gatewayURL, jobName).Gatherer(customRegistry).PushContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPushFailed, err)
	}
	return nil
}
