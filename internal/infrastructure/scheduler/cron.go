package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ArxivDigest/internal/ports"
)

// CronScheduler runs the daily job on a standard five-field cron expression.
type CronScheduler struct {
	spec       string
	schedule   cron.Schedule
	location   *time.Location
	runOnStart bool
	logger     *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	stop    chan struct{}
	pending sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// Options tune a CronScheduler.
type Options struct {
	Location *time.Location
	// RunOnStart fires the job once immediately when Start is called.
	RunOnStart bool
	Logger     *slog.Logger
}

// NewCronScheduler validates spec and builds a scheduler.
func NewCronScheduler(spec string, opts Options) (*CronScheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{
		spec:       spec,
		schedule:   schedule,
		location:   loc,
		runOnStart: opts.RunOnStart,
		logger:     opts.Logger,
	}, nil
}

// Next reports the first firing after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	return c.schedule.Next(t.In(c.location))
}

// Start registers job and begins firing it. A firing that comes due while the
// previous one is still running is skipped. Cancelling ctx stops the scheduler.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	cr := cron.New(
		cron.WithLocation(c.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	run := func() { job(time.Now().In(c.location)) }
	if _, err := cr.AddFunc(c.spec, run); err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}
	cr.Start()
	c.cron = cr
	c.stop = make(chan struct{})

	if c.runOnStart {
		c.pending.Add(1)
		go func() {
			defer c.pending.Done()
			run()
		}()
	}

	stop := c.stop
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		select {
		case <-ctx.Done():
			c.halt()
		case <-stop:
		}
	}()

	if c.logger != nil {
		c.logger.Info("scheduler started", "cron", c.spec, "timezone", c.location.String(), "next", c.Next(time.Now()))
	}
	return nil
}

// Stop halts the scheduler and waits for running jobs, or for ctx to expire.
func (c *CronScheduler) Stop(ctx context.Context) error {
	cronDone := c.halt()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if cronDone != nil {
			<-cronDone.Done()
		}
		c.pending.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the scheduler has been stopped and all jobs have returned.
func (c *CronScheduler) Wait() {
	c.pending.Wait()
}

func (c *CronScheduler) halt() context.Context {
	c.mu.Lock()
	cr, stop := c.cron, c.stop
	c.cron, c.stop = nil, nil
	c.mu.Unlock()

	if cr == nil {
		return nil
	}
	close(stop)
	return cr.Stop()
}
