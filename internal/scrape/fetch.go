package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cinedex/internal/logging"
	"cinedex/internal/ratelimit"
)

// Fetcher issues paced, retried GET requests that decode JSON.
type Fetcher struct {
	name           string
	httpClient     *http.Client
	limiter        *ratelimit.Limiter
	minInterval    time.Duration
	clock          ratelimit.Clock
	policy         ratelimit.Policy
	rateLimitDelay time.Duration
	logger         *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithClock replaces the clock used for pacing and retry sleeps.
func WithClock(clock ratelimit.Clock) FetcherOption {
	return func(f *Fetcher) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithMinInterval sets the minimum spacing between requests.
func WithMinInterval(interval time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.minInterval = interval
	}
}

// WithRateLimitDelay sets the fixed pause after HTTP 429.
func WithRateLimitDelay(delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if delay > 0 {
			f.rateLimitDelay = delay
		}
	}
}

// WithRetryPolicy overrides the backoff policy.
func WithRetryPolicy(policy ratelimit.Policy) FetcherOption {
	return func(f *Fetcher) {
		f.policy = policy
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher builds a fetcher named after its provider for logs and errors.
func NewFetcher(name string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		name:           name,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		clock:          ratelimit.SystemClock{},
		policy:         ratelimit.DefaultPolicy(),
		rateLimitDelay: 10 * time.Second,
		minInterval:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.limiter = ratelimit.NewLimiter(f.minInterval, f.clock)
	f.logger = logging.NewComponentLogger(f.logger, name)
	return f
}

// StatusError is a non-2xx response.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Body)
}

// GetJSON fetches endpoint into out. 429 and 5xx responses are retried;
// other 4xx responses fail at once.
func (f *Fetcher) GetJSON(ctx context.Context, endpoint string, out any) error {
	return f.policy.Retry(ctx, f.clock, func(int) error {
		return f.do(ctx, endpoint, out)
	}, func(err error, attempt int, delay time.Duration) {
		logging.WarnWithContext(f.logger, "scrape request failed, retrying", f.name+"_retry",
			logging.Int("attempt", attempt),
			logging.Duration("backoff", delay),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check provider availability and quota"),
			logging.String(logging.FieldImpact, "scrape delayed"),
		)
	})
}

func (f *Fetcher) do(ctx context.Context, endpoint string, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return ratelimit.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ratelimit.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := f.httpClient.Do(req)
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

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{Provider: f.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return &ratelimit.DelayError{Delay: f.rateLimitDelay, Err: statusErr}
		case resp.StatusCode >= 500:
			return statusErr
		default:
			return ratelimit.Permanent(statusErr)
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ratelimit.Permanent(fmt.Errorf("decode %s response: %w", f.name, err))
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
