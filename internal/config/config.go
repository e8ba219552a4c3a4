// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted in WEATHER_PROVIDER.
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderWeatherAPI     = "weatherapi"
)

// Config is the full runtime configuration.
type Config struct {
	Port string

	Provider          string
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	HTTPTimeout time.Duration

	CurrentTTL  time.Duration
	ForecastTTL time.Duration
	HourlyTTL   time.Duration

	BreakerFailureThreshold int
	BreakerRecoveryTimeout  time.Duration

	MaxRetries     int
	RetryBaseDelay time.Duration

	SweepInterval time.Duration

	DefaultUnits    string
	DefaultLocation string
	DefaultLanguage string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	cfg := Config{
		Port: getenvDefault("PORT", "8080"),

		Provider:          getenvDefault("WEATHER_PROVIDER", ProviderOpenWeatherMap),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),

		HTTPTimeout: getenvSeconds("HTTP_TIMEOUT_SECONDS", 10),

		CurrentTTL:  getenvSeconds("CACHE_TTL_CURRENT_SECONDS", 600),
		ForecastTTL: getenvSeconds("CACHE_TTL_FORECAST_SECONDS", 3600),
		HourlyTTL:   getenvSeconds("CACHE_TTL_HOURLY_SECONDS", 1800),

		BreakerFailureThreshold: getenvInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerRecoveryTimeout:  getenvSeconds("BREAKER_RECOVERY_SECONDS", 60),

		MaxRetries:     getenvInt("RETRY_MAX_RETRIES", 2),
		RetryBaseDelay: getenvSeconds("RETRY_BASE_DELAY_SECONDS", 1),

		SweepInterval: getenvSeconds("CACHE_SWEEP_SECONDS", 300),

		DefaultUnits:    getenvDefault("DEFAULT_UNITS", "metric"),
		DefaultLocation: getenvDefault("DEFAULT_LOCATION", "北京"),
		DefaultLanguage: getenvDefault("DEFAULT_LANGUAGE", "zh"),
	}

	switch cfg.Provider {
	case ProviderOpenWeatherMap:
		if cfg.OpenWeatherAPIKey == "" {
			return Config{}, fmt.Errorf("OPENWEATHER_API_KEY is required for provider %q", cfg.Provider)
		}
	case ProviderWeatherAPI:
		if cfg.WeatherAPIKey == "" {
			return Config{}, fmt.Errorf("WEATHERAPI_KEY is required for provider %q", cfg.Provider)
		}
	default:
		return Config{}, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getenvInt(key, fallback)) * time.Second
}
