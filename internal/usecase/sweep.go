package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ArxivDigest/internal/domain"
)

// Job is one category-day scheduled by a sweep.
type Job struct {
	Day    domain.Day
	Single bool
}

// Sweeper expands targets into days and runs them through the pipeline.
type Sweeper struct {
	pipeline *Pipeline
	workers  int
	location *time.Location
	logger   *slog.Logger
}

// NewSweeper builds a sweeper. workers below one runs days sequentially.
func NewSweeper(pipeline *Pipeline, workers int, location *time.Location, logger *slog.Logger) *Sweeper {
	if workers < 1 {
		workers = 1
	}
	if location == nil {
		location = time.UTC
	}
	return &Sweeper{pipeline: pipeline, workers: workers, location: location, logger: logger}
}

// Plan lists the jobs for categories x targets, category by category, days ascending.
func (s *Sweeper) Plan(categories []domain.Category, targets []Target, now time.Time) []Job {
	var jobs []Job
	for _, category := range categories {
		for _, target := range targets {
			for _, date := range target.Days(now, s.location) {
				jobs = append(jobs, Job{
					Day:    domain.Day{Category: category, Date: date},
					Single: target.Single(),
				})
			}
		}
	}
	return jobs
}

// Run processes every planned job. A failing day does not stop the others; all
// failures are joined into the returned error. Results keep plan order.
func (s *Sweeper) Run(ctx context.Context, categories []domain.Category, targets []Target, now time.Time) ([]domain.DayResult, error) {
	jobs := s.Plan(categories, targets, now)
	results := make([]domain.DayResult, len(jobs))

	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = domain.DayResult{Day: job.Day, Outcome: domain.OutcomeEmpty}
				return nil
			}
			res, err := s.pipeline.ProcessDay(ctx, job.Day, job.Single)
			results[i] = res
			if err != nil {
				s.warn("day failed", "day", job.Day.String(), "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	s.info("sweep finished", "days", len(jobs), "failed", len(errs))
	return results, errors.Join(errs...)
}

func (s *Sweeper) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Sweeper) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
