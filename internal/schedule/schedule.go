// Package schedule re-runs a job on a cron schedule, one run at a time.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Parse parses a 5-field cron expression.
func Parse(expr string) (cron.Schedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("schedule: parse %q: %w", expr, err)
	}
	return s, nil
}

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Runner fires Job at each activation of Schedule. Runs never overlap: an
// activation that passes while the job is still running is skipped.
type Runner struct {
	Schedule cron.Schedule
	Job      Job
	Logger   *zap.Logger
	// RunAtStart fires the job once before waiting for the first activation.
	RunAtStart bool

	now func() time.Time
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.Schedule == nil || r.Job == nil {
		return fmt.Errorf("schedule: schedule and job are required")
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := r.now
	if now == nil {
		now = time.Now
	}

	if r.RunAtStart {
		r.fire(ctx, log, 0)
	}

	for n := 1; ; n++ {
		next := r.Schedule.Next(now())
		log.Info("next scheduled run", zap.Time("at", next))
		timer := time.NewTimer(next.Sub(now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			r.fire(ctx, log, n)
		}
	}
}

func (r *Runner) fire(ctx context.Context, log *zap.Logger, n int) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	log.Info("scheduled run starting", zap.Int("seq", n))
	r.Job(ctx)
	log.Info("scheduled run done", zap.Int("seq", n), zap.Duration("took", time.Since(start)))
}
