// Package jobs runs periodic maintenance on a cron scheduler.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 5 * time.Minute

// Job is one maintenance run. The context is cancelled when the run exceeds
// the scheduler's job timeout.
type Job func(ctx context.Context) error

// Scheduler wraps cron so overlapping runs of the same job are skipped and a
// panicking job does not take the process down.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func NewScheduler(loc *time.Location) *Scheduler {
	logger := cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		timeout: defaultJobTimeout,
	}
}

// ScheduleInterval registers job to run every interval, rounded to whole
// seconds.
func (s *Scheduler) ScheduleInterval(name string, interval time.Duration, job Job) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("schedule %s: interval must be positive", name)
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	schedule := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(schedule, s.wrap(name, job))
}

// Len reports how many jobs are registered.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running ones to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		started := time.Now()
		if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("job %s failed after %s: %v", name, time.Since(started).Round(time.Millisecond), err)
		}
	}
}
