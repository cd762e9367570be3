// Package reminders runs the scheduled due-date check: a daily pass over
// all subscriptions that logs anything due within the horizon or already
// overdue.
package reminders

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/subscry/subscry/internal/recurrence"
	"github.com/subscry/subscry/internal/subscriptions"
)

// Scheduler owns the cron instance driving the due-date check.
type Scheduler struct {
	cron    *cron.Cron
	repo    *subscriptions.Repository
	horizon int
}

// NewScheduler creates a scheduler that warns about subscriptions due
// within horizonDays.
func NewScheduler(repo *subscriptions.Repository, horizonDays int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		repo:    repo,
		horizon: horizonDays,
	}
}

// Start registers the check under the given cron expression and starts
// the scheduler.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.check); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("reminder scheduler started", "schedule", schedule, "horizon_days", s.horizon)
	return nil
}

// Stop halts the scheduler. A check already running finishes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) check() {
	now := time.Now()
	for _, sub := range s.repo.List() {
		days := recurrence.DaysUntil(sub.NextDue, now)
		switch {
		case days < 0:
			slog.Warn("subscription overdue",
				"title", sub.Title,
				"due", sub.NextDue,
				"days_overdue", -days,
				"amount_cents", sub.Amount,
			)
		case days <= s.horizon:
			slog.Info("subscription due soon",
				"title", sub.Title,
				"due", sub.NextDue,
				"days_left", days,
				"amount_cents", sub.Amount,
			)
		}
	}
}
