// Package scheduler wires up the cron job that closes postings whose
// application deadline has passed.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Closer closes expired postings and reports which ones it closed.
type Closer interface {
	CloseExpired(now time.Time) []string
}

// Sweeper wraps robfig/cron and runs the deadline sweep on a schedule.
type Sweeper struct {
	cron   *cron.Cron
	closer Closer
	spec   string // cron spec, e.g. "@every 15m" or "0 * * * *"
	now    func() time.Time
}

// New creates a Sweeper for the given cron spec.
func New(closer Closer, spec string) *Sweeper {
	return &Sweeper{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		closer: closer,
		spec:   spec,
		now:    time.Now,
	}
}

// Start registers the sweep and starts the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.cron.Start()
	log.Printf("[sweeper] cron started, spec: %s", s.spec)
	return nil
}

// Stop shuts down the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[sweeper] cron stopped")
}

// Run starts the scheduler and blocks until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Next returns when the sweep fires next, or the zero time if not started.
func (s *Sweeper) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce performs a single sweep immediately.
func (s *Sweeper) RunOnce() []string {
	closed := s.closer.CloseExpired(s.now())
	if len(closed) > 0 {
		log.Printf("[sweeper] closed %d expired posting(s): %v", len(closed), closed)
	}
	return closed
}
