// Package scheduler runs the periodic cache sweep.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/chatweather/weatherbot/internal/cache"
	"github.com/chatweather/weatherbot/internal/observability"
)

// Sweeper periodically evicts expired cache entries.
type Sweeper struct {
	scheduler *gocron.Scheduler
	store     cache.Store
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSweeper builds a sweeper over the given store.
func NewSweeper(store cache.Store, logger *slog.Logger, metrics *observability.Metrics) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start begins sweeping at the given interval. It returns immediately; the
// sweep runs on the scheduler's goroutine.
func (s *Sweeper) Start(interval time.Duration) error {
	_, err := s.scheduler.Every(interval).Do(s.sweep)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("cache sweep scheduled", "interval", interval)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	removed := s.store.Sweep()
	if removed > 0 {
		s.logger.Info("cache sweep complete", "removed", removed)
	}
	if s.metrics != nil {
		s.metrics.SweepRemoved.Add(float64(removed))
	}
}
