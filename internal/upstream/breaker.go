package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/chatweather/weatherbot/internal/weather"
)

// BreakerSettings configures the circuit breaker guarding one upstream
// dependency.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32
	// RecoveryTimeout is how long the breaker stays open before allowing
	// a half-open probe.
	RecoveryTimeout time.Duration
}

// DefaultBreakerSettings matches the documented defaults: open after 5
// consecutive failures, probe again after 60 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureThreshold: 5,
		RecoveryTimeout:  60 * time.Second,
	}
}

// BreakerClient decorates a Client with a shared circuit breaker. All three
// fetch operations count against the same breaker since they target the same
// upstream dependency.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps inner with a circuit breaker per settings.
func NewBreakerClient(inner Client, settings BreakerSettings) *BreakerClient {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.RecoveryTimeout <= 0 {
		settings.RecoveryTimeout = 60 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     settings.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
	})

	return &BreakerClient{inner: inner, cb: cb}
}

func (c *BreakerClient) Name() string { return c.inner.Name() }

// State exposes the underlying breaker state for observability.
func (c *BreakerClient) State() gobreaker.State { return c.cb.State() }

func (c *BreakerClient) FetchCurrent(ctx context.Context, location string, units weather.Units) (weather.Record, error) {
	return execute(c, func() (weather.Record, error) {
		return c.inner.FetchCurrent(ctx, location, units)
	})
}

func (c *BreakerClient) FetchForecast(ctx context.Context, location string, days int, units weather.Units) (weather.ForecastRecord, error) {
	return execute(c, func() (weather.ForecastRecord, error) {
		return c.inner.FetchForecast(ctx, location, days, units)
	})
}

func (c *BreakerClient) FetchHourly(ctx context.Context, location string, hours int, units weather.Units) (weather.HourlyRecord, error) {
	return execute(c, func() (weather.HourlyRecord, error) {
		return c.inner.FetchHourly(ctx, location, hours, units)
	})
}

func execute[T any](c *BreakerClient, fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w", c.inner.Name(), ErrBreakerOpen)
		}
		return zero, err
	}
	return result.(T), nil
}
