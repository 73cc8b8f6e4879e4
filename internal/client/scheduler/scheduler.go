// Package scheduler runs the client's periodic maintenance: the retention
// sweep and the throttled foreground sync.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/robfig/cron/v3"
)

// Jobs is the work the scheduler triggers.
type Jobs interface {
	Sweep(ctx context.Context) int
	Foreground(ctx context.Context)
}

type Scheduler struct {
	jobs               Jobs
	cron               *cron.Cron
	logger             logging.Logger
	sweepInterval      time.Duration
	foregroundInterval time.Duration
}

func New(jobs Jobs, sweepInterval, foregroundInterval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{
		jobs:               jobs,
		cron:               cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:             logger,
		sweepInterval:      sweepInterval,
		foregroundInterval: foregroundInterval,
	}
}

// Start registers the jobs and starts the cron loop. A non-positive
// interval disables the matching job. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.sweepInterval > 0 {
		if _, err := s.cron.AddFunc(every(s.sweepInterval), func() { s.sweep(ctx) }); err != nil {
			return fmt.Errorf("schedule sweep: %w", err)
		}
	}

	if s.foregroundInterval > 0 {
		if _, err := s.cron.AddFunc(every(s.foregroundInterval), func() { s.jobs.Foreground(ctx) }); err != nil {
			return fmt.Errorf("schedule foreground sync: %w", err)
		}
	}

	s.logger.Info(ctx, "scheduler started", "sweep", s.sweepInterval.String(), "foreground", s.foregroundInterval.String())
	s.cron.Start()
	return nil
}

// Stop halts the loop and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) sweep(ctx context.Context) {
	if n := s.jobs.Sweep(ctx); n > 0 {
		s.logger.Info(ctx, "retention sweep", "removed", n)
	}
}

func every(d time.Duration) string {
	return "@every " + d.String()
}
