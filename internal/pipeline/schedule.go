package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/robfig/cron/v3"
)

// Scheduler reruns a stage on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler registers p.Run(stage) under the cron expression schedule.
// newRNG is called once per run so seeded deployments regenerate the same
// layout on every tick.
func NewScheduler(ctx context.Context, schedule string, p *Pipeline, stage Stage, newRNG func() *rand.Rand, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := p.Run(ctx, stage, newRNG()); err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE %q: %w", schedule, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduled run still in progress at shutdown")
	}
}
