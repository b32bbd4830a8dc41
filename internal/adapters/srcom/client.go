// Package srcom is the REST client for the competition feed. It owns every
// transport concern the rest of the system should not see: retries with
// linear backoff, client-side rate limiting, request metrics and response
// envelope decoding.
package srcom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL        = "https://www.speedrun.com/api/v1"
	defaultUserAgent      = "podium-bot/2.1"
	defaultRetryAttempts  = 6
	defaultBackoffStep    = 200 * time.Millisecond
	defaultConnectTimeout = 20 * time.Second
	defaultRequestTimeout = 60 * time.Second
	defaultRateLimitRPS   = 4
)

// Endpoint labels for request metrics.
const (
	endpointFeed        = "runs_feed"
	endpointLeaderboard = "leaderboard"
	endpointRun         = "run_detail"
	endpointVariables   = "variables"
)

// Client talks to the competition feed API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger

	baseURL   string
	userAgent string
	attempts  int
	backoff   time.Duration

	connectTimeout time.Duration
	requestTimeout time.Duration
	rps            float64

	// Category variable listings, one lookup per category per run.
	// A nil entry records a failed load so it is not retried.
	varsMu sync.Mutex
	vars   map[string]variableIndex
}

// New creates a feed client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		logger:         logger.Get().Named("srcom"),
		baseURL:        defaultBaseURL,
		userAgent:      defaultUserAgent,
		attempts:       defaultRetryAttempts,
		backoff:        defaultBackoffStep,
		connectTimeout: defaultConnectTimeout,
		requestTimeout: defaultRequestTimeout,
		rps:            defaultRateLimitRPS,
		vars:           make(map[string]variableIndex),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Limit(c.rps), 1)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.requestTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: c.connectTimeout, KeepAlive: 60 * time.Second}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}

	return c
}

// get fetches url, retrying 429 and 5xx responses with linear backoff.
// Transport failures and other status codes fail immediately.
func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	lastStatus := 0

	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			metrics.RecordAPIRetry()
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry wait: %w", ctx.Err())
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		metrics.RecordAPIRequestDuration(endpoint, float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordAPIRequest(endpoint, "error")
			c.logger.Warn(ctx, "request failed",
				logger.String("url", url),
				logger.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}

		code := resp.StatusCode
		metrics.RecordAPIRequest(endpoint, strconv.Itoa(code))

		if code >= 200 && code < 300 {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrRequestFailed, readErr)
			}
			return body, nil
		}

		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		c.logger.Warn(ctx, "unexpected status",
			logger.String("url", url),
			logger.Int("status", code),
			logger.Int("attempt", attempt+1),
		)

		if code == http.StatusTooManyRequests || code >= 500 {
			lastStatus = code
			continue
		}
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, code)
	}

	return nil, fmt.Errorf("%w: status %d after %d attempts", ErrUnexpectedStatus, lastStatus, c.attempts)
}

// getData fetches url and unwraps the response envelope.
func (c *Client) getData(ctx context.Context, endpoint, url string) (json.RawMessage, error) {
	body, err := c.get(ctx, endpoint, url)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return env.Data, nil
}
