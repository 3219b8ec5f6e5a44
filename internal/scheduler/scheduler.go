package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/molubot/molubot/internal/config"
)

// Job is one scheduled task. Expr is evaluated in KST.
type Job struct {
	Name string
	Expr string
	Run  func(ctx context.Context)

	cron *CronExpr
}

// Scheduler fires jobs on minute boundaries in KST.
type Scheduler struct {
	cfg  config.SchedulerConfig
	jobs []*Job

	now func() time.Time
}

func New(cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{cfg: cfg, now: time.Now}
}

// Add registers a job. Invalid expressions are rejected up front.
func (s *Scheduler) Add(name, expr string, run func(ctx context.Context)) error {
	cron, err := ParseCron(expr)
	if err != nil {
		return err
	}
	s.jobs = append(s.jobs, &Job{Name: name, Expr: expr, Run: run, cron: cron})
	return nil
}

// Run ticks until the context is cancelled. Each job fires at most once
// per matching minute.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		<-ctx.Done()
		return ctx.Err()
	}

	tick := s.cfg.TickInterval
	if tick <= 0 {
		tick = time.Minute
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var lastFired time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.now().In(config.KST).Truncate(time.Minute)
			if now.Equal(lastFired) {
				continue
			}
			lastFired = now
			s.fire(ctx, now)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	for _, job := range s.jobs {
		if !job.cron.Matches(now) {
			continue
		}
		slog.Info("scheduler firing", "job", job.Name)
		go job.Run(ctx)
	}
}
