package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cinedex/internal/logging"
	"cinedex/internal/ratelimit"
)

// Default request pacing for OMDB.
const (
	DefaultMinInterval    = 250 * time.Millisecond
	DefaultRateLimitDelay = 5 * time.Second
	DefaultTimeout        = 15 * time.Second
)

var imdbIDPattern = regexp.MustCompile(`^tt\d{7,}$`)

// Client provides access to the OMDB API.
type Client struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	limiter        *ratelimit.Limiter
	clock          ratelimit.Clock
	policy         ratelimit.Policy
	rateLimitDelay time.Duration
	logger         *slog.Logger
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter shares a limiter between clients.
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithClock replaces the clock used for retry sleeps.
func WithClock(clock ratelimit.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRetryPolicy overrides the backoff policy.
func WithRetryPolicy(policy ratelimit.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithRateLimitDelay sets the fixed pause after HTTP 429.
func WithRateLimitDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.rateLimitDelay = delay
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates an OMDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:         apiKey,
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		clock:          ratelimit.SystemClock{},
		policy:         ratelimit.DefaultPolicy(),
		rateLimitDelay: DefaultRateLimitDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.limiter == nil {
		client.limiter = ratelimit.NewLimiter(DefaultMinInterval, client.clock)
	}
	client.logger = logging.NewComponentLogger(client.logger, "omdb")
	return client, nil
}

// Search returns movie candidates for title. A year of 0 searches all years.
// OMDB's "Movie not found!" answer yields an empty slice and no error.
func (c *Client) Search(ctx context.Context, title string, year int) ([]Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("s", title)
	params.Set("type", "movie")
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}

	var payload searchResponse
	if err := c.get(ctx, "search", params, &payload); err != nil {
		return nil, err
	}
	if !payload.ok() {
		if payload.notFound() {
			return []Candidate{}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, payload.Error)
	}
	out := make([]Candidate, 0, len(payload.Search))
	for _, candidate := range payload.Search {
		candidate.IMDBID = strings.TrimSpace(candidate.IMDBID)
		if candidate.IMDBID == "" {
			continue
		}
		out = append(out, candidate)
	}
	return out, nil
}

// FetchDetails returns full metadata for an IMDB id, or ErrNotFound.
func (c *Client) FetchDetails(ctx context.Context, imdbID string) (*Details, error) {
	imdbID = strings.TrimSpace(imdbID)
	if !imdbIDPattern.MatchString(imdbID) {
		return nil, fmt.Errorf("%w: invalid imdb id %q", ErrNotFound, imdbID)
	}
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "short")

	var payload detailsResponse
	if err := c.get(ctx, "details", params, &payload); err != nil {
		return nil, err
	}
	if !payload.ok() {
		if payload.notFound() {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, imdbID)
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, payload.Error)
	}
	details := payload.Details
	if details.IMDBID == "" {
		details.IMDBID = imdbID
	}
	return &details, nil
}

func (c *Client) get(ctx context.Context, op string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse omdb url: %w", err)
	}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	err = c.policy.Retry(ctx, c.clock, func(int) error {
		return c.do(ctx, op, endpoint.String(), out)
	}, func(err error, attempt int, delay time.Duration) {
		eventType := "omdb_retry"
		var fixed *ratelimit.DelayError
		if errors.As(err, &fixed) {
			eventType = "omdb_rate_limited"
		}
		logging.WarnWithContext(c.logger, "omdb request failed, retrying", eventType,
			logging.String("operation", op),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.policy.MaxRetries),
			logging.Duration("backoff", delay),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "wait for OMDB rate limits or check network connectivity"),
			logging.String(logging.FieldImpact, "lookup delayed"),
		)
	})
	if errors.Is(err, ratelimit.ErrRetriesExhausted) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, op, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return ratelimit.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ratelimit.Permanent(fmt.Errorf("build request: %w", err))
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ratelimit.Permanent(ctxErr)
		}
		err = fmt.Errorf("execute request (latency=%v): %w", latency, err)
		if !ratelimit.IsTransient(err) {
			return ratelimit.Permanent(err)
		}
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ratelimit.DelayError{
			Delay: c.rateLimitDelay,
			Err:   fmt.Errorf("omdb %s returned %d (latency=%v)", op, resp.StatusCode, latency),
		}
	case resp.StatusCode == http.StatusUnauthorized:
		var env envelope
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&env)
		return ratelimit.Permanent(fmt.Errorf("%w: %s (status %d)", ErrRejected, strings.TrimSpace(env.Error), resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("omdb %s returned %d (latency=%v)", op, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ratelimit.Permanent(fmt.Errorf("decode omdb %s response: %w", op, err))
	}
	return nil
}
