package notify

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the two periodic cycles: refresh (slow) and reminder
// matching (fast). Each job carries a skip-if-already-running guard so an
// overrunning invocation is never raced by the next tick of the same job;
// the two different jobs may overlap freely since the matcher only reads
// the snapshot while refresh replaces it atomically.
type Scheduler struct {
	cron    *cron.Cron
	service *Service

	refreshEvery  time.Duration
	remindEvery   time.Duration
	refreshActive atomic.Bool
	remindActive  atomic.Bool
}

// NewScheduler creates a scheduler with the given cycle intervals.
func NewScheduler(service *Service, refreshEvery, remindEvery time.Duration) *Scheduler {
	if refreshEvery <= 0 {
		refreshEvery = 5 * time.Minute
	}
	if remindEvery <= 0 {
		remindEvery = time.Minute
	}

	return &Scheduler{
		cron:         cron.New(),
		service:      service,
		refreshEvery: refreshEvery,
		remindEvery:  remindEvery,
	}
}

// Start registers both jobs and begins ticking.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Println("Starting notification scheduler...")

	if _, err := s.cron.AddFunc("@every "+s.refreshEvery.String(), func() {
		s.runExclusive(ctx, "refresh", &s.refreshActive, s.service.RunRefresh)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("@every "+s.remindEvery.String(), func() {
		s.runExclusive(ctx, "reminders", &s.remindActive, s.service.RunReminders)
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Notification scheduler started (refresh every %s, reminders every %s)",
		s.refreshEvery, s.remindEvery)

	return nil
}

// Stop shuts the scheduler down, waiting for in-flight jobs to finish so no
// snapshot write is abandoned mid-transaction.
func (s *Scheduler) Stop() {
	log.Println("Stopping notification scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Notification scheduler stopped")
}

// runExclusive runs fn unless the previous invocation of the same job is
// still active, in which case the tick is skipped.
func (s *Scheduler) runExclusive(ctx context.Context, name string, active *atomic.Bool, fn func(context.Context)) {
	if !active.CompareAndSwap(false, true) {
		log.Printf("Skipping %s tick: previous invocation still running", name)
		return
	}
	defer active.Store(false)

	fn(ctx)
}
