package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
	}
}

func retryAll(error) Outcome {
	return Outcome{Retry: true, CountAsFailure: true}
}

func TestGuardRetriesUntilSuccess(t *testing.T) {
	guard := NewGuard("test", fastConfig(), retryAll, nil)

	calls := 0
	err := guard.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGuardStopsOnNonRetryable(t *testing.T) {
	classify := func(error) Outcome { return Outcome{Retry: false, CountAsFailure: true} }
	guard := NewGuard("test", fastConfig(), classify, nil)

	calls := 0
	err := guard.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("bad request")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error must not be retried, got %d calls", calls)
	}
}

func TestGuardExhaustsAttempts(t *testing.T) {
	guard := NewGuard("test", fastConfig(), retryAll, nil)

	calls := 0
	boom := errors.New("boom")
	err := guard.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGuardHonorsContextCancellation(t *testing.T) {
	guard := NewGuard("test", fastConfig(), retryAll, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := guard.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("never retried")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("cancelled context must prevent the call, got %d", calls)
	}
}

func TestGuardBreakerOpensAfterFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute

	guard := NewGuard("test", cfg, retryAll, nil)
	fail := func(context.Context) error { return errors.New("down") }

	for i := 0; i < 2; i++ {
		if err := guard.Do(context.Background(), fail); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	err := guard.Do(context.Background(), fail)
	if !Unavailable(err) {
		t.Fatalf("expected open breaker, got %v", err)
	}
}

func TestGuardBreakerIgnoresNonCountedFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute

	classify := func(error) Outcome { return Outcome{Retry: false, CountAsFailure: false} }
	guard := NewGuard("test", cfg, classify, nil)
	fail := func(context.Context) error { return errors.New("client error") }

	for i := 0; i < 5; i++ {
		if err := guard.Do(context.Background(), fail); Unavailable(err) {
			t.Fatalf("breaker must not open on non-counted failures")
		}
	}
}
