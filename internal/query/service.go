// Package query is the orchestration core: it takes a resolved location and
// request parameters and runs them through cache lookup, breaker-guarded
// fetch with retry, validation, write-through and graceful degradation.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chatweather/weatherbot/internal/cache"
	"github.com/chatweather/weatherbot/internal/command"
	"github.com/chatweather/weatherbot/internal/locate"
	"github.com/chatweather/weatherbot/internal/observability"
	"github.com/chatweather/weatherbot/internal/prefs"
	"github.com/chatweather/weatherbot/internal/upstream"
	"github.com/chatweather/weatherbot/internal/weather"
)

// TTLConfig holds the cache lifetime per data type.
type TTLConfig struct {
	Current  time.Duration
	Forecast time.Duration
	Hourly   time.Duration
}

// DefaultTTLConfig returns the stock lifetimes: 10 minutes for current
// conditions, 1 hour for daily forecasts, 30 minutes for hourly slices.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Current:  10 * time.Minute,
		Forecast: time.Hour,
		Hourly:   30 * time.Minute,
	}
}

// SimilarWindow bounds how old a similar-location cache entry may be when
// used as a degraded answer.
const SimilarWindow = 24 * time.Hour

// Service is the query orchestrator. It owns the full pipeline for a single
// upstream provider; the client passed to New is wrapped with a circuit
// breaker here.
type Service struct {
	client   upstream.Client
	retry    upstream.RetryPolicy
	cache    cache.Store
	resolver locate.Resolver
	prefs    prefs.Store
	parser   *command.Parser
	ttl      TTLConfig
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Options bundles the tunables for New. Zero values fall back to defaults.
type Options struct {
	Breaker upstream.BreakerSettings
	Retry   upstream.RetryPolicy
	TTL     TTLConfig
}

// New builds a Service around the given provider client and stores.
func New(client upstream.Client, store cache.Store, resolver locate.Resolver, prefStore prefs.Store, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if opts.Breaker == (upstream.BreakerSettings{}) {
		opts.Breaker = upstream.DefaultBreakerSettings()
	}
	if opts.Retry.MaxRetries == 0 && opts.Retry.BaseDelay == 0 {
		opts.Retry = upstream.DefaultRetryPolicy()
	}
	if opts.TTL == (TTLConfig{}) {
		opts.TTL = DefaultTTLConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		client:   upstream.NewBreakerClient(client, opts.Breaker),
		retry:    opts.Retry,
		cache:    store,
		resolver: resolver,
		prefs:    prefStore,
		parser:   command.NewParser(),
		ttl:      opts.TTL,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Classify parses a raw user message into a structured command. The second
// return value is false for blank input.
func (s *Service) Classify(message string) (command.Command, bool) {
	return s.parser.Parse(message)
}

// Parser exposes the classifier for callers that need location extraction
// on its own.
func (s *Service) Parser() *command.Parser { return s.parser }

// Prefs exposes the preference store for the dispatch layer.
func (s *Service) Prefs() prefs.Store { return s.prefs }

type forecastBounds struct {
	Days int `validate:"gte=1,lte=16"`
}

type hourlyBounds struct {
	Hours int `validate:"gte=1,lte=48"`
}

// CurrentWeather returns current conditions for the location, preferring
// fresh cache, then a live fetch, then degraded cache.
func (s *Service) CurrentWeather(ctx context.Context, location, userID string) (weather.Record, error) {
	info, err := s.resolveLocation(location)
	if err != nil {
		return weather.Record{}, err
	}
	units := s.unitsFor(userID)

	key := cache.Key(info.Name, cache.TypeCurrent, map[string]string{"units": string(units)})
	if entry, ok := s.cache.Get(key, cache.TypeCurrent); ok {
		var rec weather.Record
		if jsonErr := json.Unmarshal(entry.Payload, &rec); jsonErr == nil {
			s.lookup(cache.TypeCurrent, "hit")
			rec.Source = weather.SourceCache
			return rec, nil
		}
		s.logger.Warn("dropping undecodable cache entry", "key", key)
	}
	s.lookup(cache.TypeCurrent, "miss")

	rec, err := upstream.Retry(ctx, s.retry, func() (weather.Record, error) {
		return s.client.FetchCurrent(ctx, info.Name, units)
	})
	s.countFetch(err)
	if err != nil {
		return s.degradeCurrent(key, info.Name, err)
	}

	if !weather.Valid(rec) {
		s.logger.Warn("sanitizing out-of-range reading", "location", info.Name, "provider", s.client.Name())
		rec = weather.Sanitize(rec)
	}
	rec.Source = weather.SourceLive
	s.store(key, cache.TypeCurrent, info.Name, rec, s.ttl.Current)
	return rec, nil
}

// Forecast returns a daily forecast for up to days days.
func (s *Service) Forecast(ctx context.Context, location string, days int, userID string) (weather.ForecastRecord, error) {
	if err := s.validate.Struct(forecastBounds{Days: days}); err != nil {
		return weather.ForecastRecord{}, &weather.ValidationError{
			Msg: fmt.Sprintf("forecast days must be between 1 and 16, got %d", days),
		}
	}
	info, err := s.resolveLocation(location)
	if err != nil {
		return weather.ForecastRecord{}, err
	}
	units := s.unitsFor(userID)

	key := cache.Key(info.Name, cache.TypeForecast, map[string]string{
		"days":  fmt.Sprint(days),
		"units": string(units),
	})
	if entry, ok := s.cache.Get(key, cache.TypeForecast); ok {
		var rec weather.ForecastRecord
		if jsonErr := json.Unmarshal(entry.Payload, &rec); jsonErr == nil {
			s.lookup(cache.TypeForecast, "hit")
			rec.Source = weather.SourceCache
			return rec, nil
		}
		s.logger.Warn("dropping undecodable cache entry", "key", key)
	}
	s.lookup(cache.TypeForecast, "miss")

	rec, err := upstream.Retry(ctx, s.retry, func() (weather.ForecastRecord, error) {
		return s.client.FetchForecast(ctx, info.Name, days, units)
	})
	s.countFetch(err)
	if err != nil {
		return s.degradeForecast(key, info.Name, err)
	}

	rec.Source = weather.SourceLive
	s.store(key, cache.TypeForecast, info.Name, rec, s.ttl.Forecast)
	return rec, nil
}

// HourlyForecast returns an hour-by-hour forecast. Hourly data ages too
// quickly to be worth caching or degrading; every call is a live fetch.
func (s *Service) HourlyForecast(ctx context.Context, location string, hours int, userID string) (weather.HourlyRecord, error) {
	if err := s.validate.Struct(hourlyBounds{Hours: hours}); err != nil {
		return weather.HourlyRecord{}, &weather.ValidationError{
			Msg: fmt.Sprintf("hourly horizon must be between 1 and 48 hours, got %d", hours),
		}
	}
	info, err := s.resolveLocation(location)
	if err != nil {
		return weather.HourlyRecord{}, err
	}
	units := s.unitsFor(userID)

	rec, err := upstream.Retry(ctx, s.retry, func() (weather.HourlyRecord, error) {
		return s.client.FetchHourly(ctx, info.Name, hours, units)
	})
	s.countFetch(err)
	if err != nil {
		return weather.HourlyRecord{}, err
	}
	rec.Source = weather.SourceLive
	return rec, nil
}

func (s *Service) resolveLocation(location string) (locate.Info, error) {
	info, err := s.resolver.Resolve(location)
	if err != nil {
		return locate.Info{}, &weather.LocationError{
			Location:    location,
			Suggestions: s.resolver.SuggestCorrections(location),
		}
	}
	return info, nil
}

func (s *Service) unitsFor(userID string) weather.Units {
	units := s.prefs.Get(userID).Units
	if !units.Valid() {
		return weather.UnitsMetric
	}
	return units
}

// degradeCurrent serves a failed current-conditions fetch from stale or
// similar cache. Malformed upstream payloads are never masked by old data.
func (s *Service) degradeCurrent(key, location string, cause error) (weather.Record, error) {
	if upstream.KindOf(cause) == upstream.KindDataFormat {
		return weather.Record{}, cause
	}

	if entry, ok := s.cache.GetStale(key, cache.TypeCurrent); ok {
		var rec weather.Record
		if err := json.Unmarshal(entry.Payload, &rec); err == nil {
			s.degraded("stale", location, entry.CreatedAt, cause)
			rec.Source = weather.SourceStaleCache
			return rec, nil
		}
	}

	if entry, ok := s.cache.GetSimilar(location, cache.TypeCurrent, SimilarWindow); ok {
		var rec weather.Record
		if err := json.Unmarshal(entry.Payload, &rec); err == nil {
			s.degraded("similar", location, entry.CreatedAt, cause)
			rec.Location = location
			rec.Source = weather.SourceSimilarCache
			return rec, nil
		}
	}

	return weather.Record{}, cause
}

func (s *Service) degradeForecast(key, location string, cause error) (weather.ForecastRecord, error) {
	if upstream.KindOf(cause) == upstream.KindDataFormat {
		return weather.ForecastRecord{}, cause
	}

	if entry, ok := s.cache.GetStale(key, cache.TypeForecast); ok {
		var rec weather.ForecastRecord
		if err := json.Unmarshal(entry.Payload, &rec); err == nil {
			s.degraded("stale", location, entry.CreatedAt, cause)
			rec.Source = weather.SourceStaleCache
			return rec, nil
		}
	}

	if entry, ok := s.cache.GetSimilar(location, cache.TypeForecast, SimilarWindow); ok {
		var rec weather.ForecastRecord
		if err := json.Unmarshal(entry.Payload, &rec); err == nil {
			s.degraded("similar", location, entry.CreatedAt, cause)
			rec.Location = location
			rec.Source = weather.SourceSimilarCache
			return rec, nil
		}
	}

	return weather.ForecastRecord{}, cause
}

func (s *Service) store(key string, dataType cache.DataType, location string, record any, ttl time.Duration) {
	payload, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("cannot serialize record for cache", "location", location, "error", err)
		return
	}
	s.cache.Put(key, dataType, location, payload, ttl)
}

func (s *Service) lookup(dataType cache.DataType, result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(string(dataType), result).Inc()
	}
}

func (s *Service) countFetch(err error) {
	if s.metrics == nil {
		return
	}
	if err == nil {
		s.metrics.UpstreamRequests.WithLabelValues(s.client.Name(), "success").Inc()
		return
	}
	s.metrics.UpstreamRequests.WithLabelValues(s.client.Name(), "error").Inc()
	if errors.Is(err, upstream.ErrBreakerOpen) {
		s.metrics.BreakerRejected.Inc()
		return
	}
	s.metrics.UpstreamErrors.WithLabelValues(s.client.Name(), string(upstream.KindOf(err))).Inc()
}

func (s *Service) degraded(mode, location string, cachedAt time.Time, cause error) {
	s.logger.Warn("serving degraded answer",
		"mode", mode,
		"location", location,
		"cachedAt", cachedAt,
		"cause", cause,
	)
	if s.metrics != nil {
		s.metrics.Degradations.WithLabelValues(mode).Inc()
	}
}
