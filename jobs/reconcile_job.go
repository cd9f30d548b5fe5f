// Package jobs holds the background work scheduled next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Reconciler releases rooms left booked or reserved without a holding booking.
type Reconciler interface {
	Reconcile(ctx context.Context) ([]string, error)
}

// Scheduler runs room reconciliation on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	rec     Reconciler
	log     *logrus.Logger
	timeout time.Duration
}

// NewScheduler registers the reconcile job on schedule. An empty schedule returns a
// scheduler with no jobs.
func NewScheduler(schedule string, rec Reconciler, timeout time.Duration, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		rec:     rec,
		log:     log,
		timeout: timeout,
	}
	if schedule == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("reconcile schedule %q: %w", schedule, err)
	}
	log.WithField("schedule", schedule).Info("room reconciliation scheduled")
	return s, nil
}

// RunOnce reconciles rooms and logs the outcome.
func (s *Scheduler) RunOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	released, err := s.rec.Reconcile(ctx)
	if err != nil {
		s.log.WithError(err).Error("room reconciliation failed")
		return
	}
	if len(released) > 0 {
		s.log.WithField("rooms", released).Warn("released rooms with no holding booking")
		return
	}
	s.log.Debug("room reconciliation found nothing to release")
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running job until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("reconcile job still running at shutdown")
	}
}
