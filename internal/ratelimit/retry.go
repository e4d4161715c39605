package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default retry settings for OMDB and provider scrapes.
const (
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultMaxRetries     = 3
)

// ErrRetriesExhausted marks an operation that kept failing after every retry.
var ErrRetriesExhausted = errors.New("retries exhausted")

// DelayError asks Retry to wait a fixed duration (e.g. after HTTP 429)
// instead of the next backoff interval.
type DelayError struct {
	Delay time.Duration
	Err   error
}

func (e *DelayError) Error() string { return e.Err.Error() }

func (e *DelayError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Policy configures exponential backoff.
type Policy struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxRetries     int
}

// DefaultPolicy returns the 1s/30s/3 retry policy.
func DefaultPolicy() Policy {
	return Policy{
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		MaxRetries:     DefaultMaxRetries,
	}
}

func (p Policy) newBackOff() backoff.BackOff {
	initial := p.InitialBackoff
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	maxInterval := p.MaxBackoff
	if maxInterval < initial {
		maxInterval = initial
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initial
	exp.MaxInterval = maxInterval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()
	if p.MaxRetries <= 0 {
		return &backoff.StopBackOff{}
	}
	return backoff.WithMaxRetries(exp, uint64(p.MaxRetries))
}

// Notify is called before each retry sleep.
type Notify func(err error, attempt int, delay time.Duration)

// Retry runs op until it succeeds, returns a Permanent error, the context
// ends, or the policy runs out of retries. attempt starts at 0.
func (p Policy) Retry(ctx context.Context, clock Clock, op func(attempt int) error, notify Notify) error {
	if clock == nil {
		clock = SystemClock{}
	}
	b := p.newBackOff()
	for attempt := 0; ; attempt++ {
		err := op(attempt)
		if err == nil {
			return nil
		}
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Unwrap()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		delay := b.NextBackOff()
		if delay == backoff.Stop {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt+1, err)
		}
		var fixed *DelayError
		if errors.As(err, &fixed) && fixed.Delay > 0 {
			delay = fixed.Delay
		}
		if notify != nil {
			notify(err, attempt+1, delay)
		}
		if err := clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// IsTransient reports whether err represents a network condition worth
// retrying (timeouts, resets, refused connections). Malformed requests and
// unknown hosts are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, token := range []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"eof",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
