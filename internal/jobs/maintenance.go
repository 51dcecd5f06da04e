package jobs

import (
	"context"
	"log"
	"time"
)

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type ProgressRebuilder interface {
	RebuildAll(ctx context.Context) (int, error)
}

// PurgeSessions clears expired session tokens.
func PurgeSessions(purger SessionPurger) Job {
	return func(ctx context.Context) error {
		cleared, err := purger.PurgeExpiredSessions(ctx)
		if err != nil {
			return err
		}
		if cleared > 0 {
			log.Printf("purged %d expired sessions", cleared)
		}
		return nil
	}
}

// ReconcileProgress rebuilds every progress summary from the attempt log.
func ReconcileProgress(rebuilder ProgressRebuilder) Job {
	return func(ctx context.Context) error {
		rebuilt, err := rebuilder.RebuildAll(ctx)
		if err != nil {
			return err
		}
		log.Printf("reconciled progress for %d users", rebuilt)
		return nil
	}
}

// Intervals selects which maintenance jobs run. A zero interval disables
// the job.
type Intervals struct {
	SessionPurge time.Duration
	Reconcile    time.Duration
}

// Register schedules the maintenance jobs enabled in intervals.
func Register(s *Scheduler, intervals Intervals, purger SessionPurger, rebuilder ProgressRebuilder) error {
	if intervals.SessionPurge > 0 {
		if _, err := s.ScheduleInterval("session-purge", intervals.SessionPurge, PurgeSessions(purger)); err != nil {
			return err
		}
	}
	if intervals.Reconcile > 0 {
		if _, err := s.ScheduleInterval("progress-reconcile", intervals.Reconcile, ReconcileProgress(rebuilder)); err != nil {
			return err
		}
	}
	return nil
}
