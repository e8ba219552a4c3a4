package upstream

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy retries a breaker-guarded upstream call with bounded,
// error-class-scaled backoff.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first
	// failure, so MaxRetries+1 attempts total.
	MaxRetries int
	// BaseDelay is the starting delay before a retry. It grows by 1.5x
	// after every attempt, on top of the per-class multiplier.
	BaseDelay time.Duration

	// sleep is swappable in tests. nil means a real context-aware sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the documented defaults: at most 2 retries
// with a 1-second base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Second}
}

// Retry runs fn until it succeeds, a non-retryable error occurs, or the
// attempt budget is exhausted; the last observed error is returned then.
// A breaker-open rejection consumes a retry, but a second consecutive one
// short-circuits the remaining attempts: the breaker will not close within
// this call's window.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	delay := p.BaseDelay
	var lastErr error
	breakerWasOpen := false

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if errors.Is(err, ErrBreakerOpen) {
			if breakerWasOpen {
				// Still open after waiting; further attempts are pointless.
				return zero, lastErr
			}
			breakerWasOpen = true
		} else {
			breakerWasOpen = false
			if !Retryable(KindOf(err)) {
				return zero, err
			}
		}

		if attempt >= p.MaxRetries {
			return zero, lastErr
		}

		if err := sleep(ctx, delay*time.Duration(classMultiplier(KindOf(lastErr)))); err != nil {
			return zero, lastErr
		}
		delay = delay * 3 / 2
	}
}

// classMultiplier scales the backoff delay by error class: rate limits get
// the longest pause, server-side failures a medium one, everything else the
// base delay.
func classMultiplier(kind Kind) int {
	switch kind {
	case KindRateLimit:
		return 3
	case KindServer, KindMaintenance:
		return 2
	}
	return 1
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
