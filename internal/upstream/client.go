package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/chatweather/weatherbot/internal/weather"
)

// Client abstracts a weather data provider (OpenWeatherMap, WeatherAPI.com).
// Conversion from the provider's wire format to domain records happens inside
// the client, selected once at configuration time.
type Client interface {
	Name() string
	FetchCurrent(ctx context.Context, location string, units weather.Units) (weather.Record, error)
	FetchForecast(ctx context.Context, location string, days int, units weather.Units) (weather.ForecastRecord, error)
	FetchHourly(ctx context.Context, location string, hours int, units weather.Units) (weather.HourlyRecord, error)
}

// Kind classifies an upstream failure. The orchestrator maps kinds to
// user-safe messages and the retry policy uses them to decide on delays.
type Kind string

const (
	KindRateLimit    Kind = "rate_limit"
	KindNotFound     Kind = "not_found"
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindQuota        Kind = "quota"
	KindMaintenance  Kind = "maintenance"
	KindServer       Kind = "server"
	KindUnknown      Kind = "unknown"
	KindBadRequest   Kind = "bad_request"
	KindDataFormat   Kind = "data_format"
)

// ErrBreakerOpen is returned when the circuit breaker rejects a call
// without invoking the upstream.
var ErrBreakerOpen = errors.New("circuit breaker open")

// Error is a classified upstream failure.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from err, defaulting to unknown.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	return KindUnknown
}

// Retryable reports whether a failure of this kind may be retried.
// Malformed requests, missing locations, auth problems and quota exhaustion
// will not improve on a second attempt.
func Retryable(kind Kind) bool {
	switch kind {
	case KindBadRequest, KindNotFound, KindUnauthorized, KindForbidden, KindQuota, KindDataFormat:
		return false
	}
	return true
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusServiceUnavailable:
		return KindMaintenance
	}
	if code >= 500 {
		return KindServer
	}
	return KindUnknown
}
