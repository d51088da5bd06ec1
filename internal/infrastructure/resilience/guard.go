// Package resilience wraps calls to external dependencies with retries and a
// circuit breaker. Each guarded dependency gets its own Guard, so a broken
// embedding backend cannot trip the breaker of the event bus.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Outcome tells the guard how to treat a failure: whether another attempt may
// help and whether the failure should count against the breaker.
type Outcome struct {
	Retry          bool
	CountAsFailure bool
}

type Classify func(err error) Outcome

// conservativeClassify never retries and always records the failure.
func conservativeClassify(error) Outcome {
	return Outcome{Retry: false, CountAsFailure: true}
}

type Guard struct {
	name     string
	cfg      Config
	classify Classify
	breaker  *gobreaker.CircuitBreaker[any]
	logger   *slog.Logger
}

func NewGuard(name string, cfg Config, classify Classify, logger *slog.Logger) *Guard {
	cfg = cfg.normalize()
	if classify == nil {
		classify = conservativeClassify
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Guard{name: name, cfg: cfg, classify: classify, logger: logger}
	if cfg.BreakerEnabled {
		g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.BreakerHalfOpenMaxCalls,
			Timeout:     cfg.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.BreakerMinRequests {
					return false
				}
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= cfg.BreakerFailureRatio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !classify(err).CountAsFailure
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit_breaker_state_change",
					"dependency", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return g
}

func (g *Guard) Do(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: callback is nil")
	}
	if g.breaker == nil {
		return g.withRetry(ctx, fn)
	}
	_, err := g.breaker.Execute(func() (any, error) {
		return nil, g.withRetry(ctx, fn)
	})
	return err
}

func (g *Guard) withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := g.cfg.RetryInitialBackoff

	var err error
	for attempt := 1; attempt <= g.cfg.RetryMaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !g.classify(err).Retry || attempt == g.cfg.RetryMaxAttempts {
			return err
		}

		g.logger.Warn("retry_attempt",
			"dependency", g.name,
			"attempt", attempt,
			"max_attempts", g.cfg.RetryMaxAttempts,
			"backoff", backoff,
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * g.cfg.RetryMultiplier)
		if backoff > g.cfg.RetryMaxBackoff {
			backoff = g.cfg.RetryMaxBackoff
		}
	}
	return err
}

// Unavailable reports whether the guard rejected the call without running it
// because its breaker is open.
func Unavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
