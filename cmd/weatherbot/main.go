package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/chatweather/weatherbot/internal/api/http"
	"github.com/chatweather/weatherbot/internal/cache"
	"github.com/chatweather/weatherbot/internal/config"
	"github.com/chatweather/weatherbot/internal/locate"
	"github.com/chatweather/weatherbot/internal/observability"
	"github.com/chatweather/weatherbot/internal/prefs"
	"github.com/chatweather/weatherbot/internal/query"
	"github.com/chatweather/weatherbot/internal/scheduler"
	"github.com/chatweather/weatherbot/internal/upstream"
	"github.com/chatweather/weatherbot/internal/weather"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var client upstream.Client
	switch cfg.Provider {
	case config.ProviderWeatherAPI:
		client = upstream.NewWeatherAPIClient(httpClient, cfg.WeatherAPIKey)
	default:
		client = upstream.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey)
	}

	var resolver locate.Resolver = locate.NewStaticResolver()
	if cfg.GeocoderAPIKey != "" {
		resolver = locate.NewGeocodingResolver(cfg.GeocoderAPIKey, log)
	}

	store := cache.NewMemoryStore()
	prefStore := prefs.NewMemoryStore(weather.Units(cfg.DefaultUnits), cfg.DefaultLanguage)
	metrics := observability.NewMetrics()

	svc := query.New(client, store, resolver, prefStore, query.Options{
		Breaker: upstream.BreakerSettings{
			FailureThreshold: uint32(cfg.BreakerFailureThreshold),
			RecoveryTimeout:  cfg.BreakerRecoveryTimeout,
		},
		Retry: upstream.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
		},
		TTL: query.TTLConfig{
			Current:  cfg.CurrentTTL,
			Forecast: cfg.ForecastTTL,
			Hourly:   cfg.HourlyTTL,
		},
	}, log, metrics)

	sweeper := scheduler.NewSweeper(store, log, metrics)
	if err := sweeper.Start(cfg.SweepInterval); err != nil {
		log.Error("cannot start cache sweep", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "weatherbot",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.NewHandler(svc, cfg.DefaultLocation, log).Register(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	log.Info("weatherbot listening", "port", cfg.Port, "provider", client.Name())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
