package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
	"time"

	"cinedex/internal/ratelimit"
	"cinedex/internal/testsupport"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLimiterSpacesCalls(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	limiter := ratelimit.NewLimiter(250*time.Millisecond, clock)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
	if got := clock.Now().Sub(epoch); got != 750*time.Millisecond {
		t.Fatalf("four calls should span 750ms, got %v", got)
	}
}

func TestLimiterIdleCallerDoesNotWait(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	limiter := ratelimit.NewLimiter(time.Second, clock)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Second)
	if err := limiter.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if len(clock.Sleeps()) != 0 {
		t.Fatalf("expected no sleeps, got %v", clock.Sleeps())
	}
}

func TestLimiterCancelledContext(t *testing.T) {
	limiter := ratelimit.NewLimiter(time.Second, testsupport.NewFakeClock(epoch))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLimiterDisabled(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	limiter := ratelimit.NewLimiter(0, clock)
	for i := 0; i < 10; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if clock.Slept() != 0 {
		t.Fatalf("disabled limiter slept %v", clock.Slept())
	}
}

func TestRetryExponentialBackoff(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	policy := ratelimit.Policy{InitialBackoff: time.Second, MaxBackoff: 30 * time.Second, MaxRetries: 3}
	calls := 0
	err := policy.Retry(context.Background(), clock, func(int) error {
		calls++
		return errors.New("503")
	}, nil)
	if !errors.Is(err, ratelimit.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	got := clock.Sleeps()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("sleeps = %v, want %v", got, want)
	}
}

func TestRetryCapsAtMaxBackoff(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	policy := ratelimit.Policy{InitialBackoff: 10 * time.Second, MaxBackoff: 15 * time.Second, MaxRetries: 3}
	_ = policy.Retry(context.Background(), clock, func(int) error { return errors.New("boom") }, nil)
	for _, d := range clock.Sleeps() {
		if d > 15*time.Second {
			t.Fatalf("sleep %v exceeds max backoff", d)
		}
	}
}

func TestRetryHonoursFixedDelay(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	var notified []int
	err := ratelimit.DefaultPolicy().Retry(context.Background(), clock, func(attempt int) error {
		if attempt == 0 {
			return &ratelimit.DelayError{Delay: 5 * time.Second, Err: errors.New("429")}
		}
		return nil
	}, func(_ error, attempt int, _ time.Duration) {
		notified = append(notified, attempt)
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got := clock.Sleeps(); len(got) != 1 || got[0] != 5*time.Second {
		t.Fatalf("expected one 5s sleep, got %v", got)
	}
	if len(notified) != 1 || notified[0] != 1 {
		t.Fatalf("unexpected notifications %v", notified)
	}
}

func TestRetryPermanentStopsImmediately(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	sentinel := errors.New("invalid api key")
	calls := 0
	err := ratelimit.DefaultPolicy().Retry(context.Background(), clock, func(int) error {
		calls++
		return ratelimit.Permanent(sentinel)
	}, nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 1 || len(clock.Sleeps()) != 0 {
		t.Fatalf("permanent error retried: calls=%d sleeps=%v", calls, clock.Sleeps())
	}
}

func TestRetryZeroRetries(t *testing.T) {
	clock := testsupport.NewFakeClock(epoch)
	calls := 0
	err := ratelimit.Policy{MaxRetries: 0}.Retry(context.Background(), clock, func(int) error {
		calls++
		return errors.New("down")
	}, nil)
	if !errors.Is(err, ratelimit.ErrRetriesExhausted) || calls != 1 {
		t.Fatalf("expected single attempt, calls=%d err=%v", calls, err)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, true},
		{&net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{errors.New("read: connection reset by peer"), true},
		{errors.New("decode response: invalid character"), false},
		{&url.Error{Op: "Get", URL: "ftp://x", Err: errors.New(`unsupported protocol scheme "ftp"`)}, false},
		{&url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}}}, false},
		{&url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "read", Err: errors.New("broken pipe")}}, true},
	}
	for _, tc := range cases {
		if got := ratelimit.IsTransient(tc.err); got != tc.want {
			t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
