package usecase

import (
	"context"
	"log/slog"
	"time"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/ports"
)

// Scheduler wires the cron driver with the sweeper: each firing processes the day of
// the trigger for every configured category.
type Scheduler struct {
	driver     ports.Scheduler
	sweeper    *Sweeper
	categories []domain.Category
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, sweeper *Sweeper, categories []domain.Category, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, sweeper: sweeper, categories: categories, logger: logger}
}

// Start registers the daily job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.sweeper == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunDay(ctx, trigger)
	})
}

// RunDay processes the calendar day of trigger for all categories.
func (s *Scheduler) RunDay(ctx context.Context, trigger time.Time) []domain.DayResult {
	trigger = trigger.In(s.sweeper.location)
	target := Target{Year: trigger.Year(), Month: trigger.Month(), Day: trigger.Day()}

	results, err := s.sweeper.Run(ctx, s.categories, []Target{target}, trigger)
	if err != nil && s.logger != nil {
		s.logger.Error("scheduled run failed", "day", target.String(), "error", err)
	}
	return results
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
