// Package scheduler provides the periodic tick driver for TaskBell.
//
// The reconciliation sweep and daily digest are cron jobs; the default
// cadence is once per minute, and the downstream components degrade
// gracefully (missed digests, dropped late reminders) if ticks come slower.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// EveryMinute is the cron expression for the reconciler tick cadence.
const EveryMinute = "* * * * *"

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler() *Scheduler {
	// Use standard 5-field cron parser (min, hour, dom, month, dow) and enable recovery
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression.
// It returns an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	if err != nil {
		slog.Error("Failed to add cron job", "error", err, "expr", expr)
		return err
	}
	slog.Debug("Cron job added", "expr", expr)
	return nil
}

// AddTick schedules a task on the once-per-minute reconciler cadence.
func (s *Scheduler) AddTick(task func()) error {
	return s.AddJob(EveryMinute, task)
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
