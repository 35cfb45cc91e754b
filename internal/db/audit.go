package db

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/jonathan/jobboard/internal/jobboard"
)

// EventStore persists and lists audit events.
type EventStore interface {
	InsertEvent(ctx context.Context, ev jobboard.Event) error
	ListEvents(ctx context.Context, limit int) ([]jobboard.Event, error)
}

// AuditLog is a jobboard.Recorder that writes events to an EventStore from a
// background goroutine. Record never blocks: when the buffer is full, or the
// writer has already stopped, the event is dropped and counted.
type AuditLog struct {
	store   EventStore
	events  chan jobboard.Event
	dropped atomic.Int64
	stopped atomic.Bool
	timeout time.Duration
}

// NewAuditLog creates an audit log with room for buffer pending events.
func NewAuditLog(store EventStore, buffer int) *AuditLog {
	if buffer <= 0 {
		buffer = 256
	}
	return &AuditLog{
		store:   store,
		events:  make(chan jobboard.Event, buffer),
		timeout: 5 * time.Second,
	}
}

// Record implements jobboard.Recorder.
func (a *AuditLog) Record(ev jobboard.Event) {
	if a.stopped.Load() {
		a.drop("writer stopped")
		return
	}
	select {
	case a.events <- ev:
	default:
		a.drop("buffer full")
	}
}

func (a *AuditLog) drop(reason string) {
	if n := a.dropped.Add(1); n == 1 || n%100 == 0 {
		log.Printf("[audit] %s, %d event(s) dropped", reason, n)
	}
}

// Dropped returns how many events were discarded.
func (a *AuditLog) Dropped() int64 {
	return a.dropped.Load()
}

// Run writes buffered events until ctx is canceled, then flushes what is
// already queued and returns. Cancel ctx only after every producer of events
// has stopped; later events are dropped.
func (a *AuditLog) Run(ctx context.Context) error {
	log.Println("[audit] writer started")
	for {
		select {
		case ev := <-a.events:
			a.write(ctx, ev)
		case <-ctx.Done():
			a.stopped.Store(true)
			a.drain()
			log.Println("[audit] writer stopped")
			return nil
		}
	}
}

func (a *AuditLog) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for {
		select {
		case ev := <-a.events:
			a.write(ctx, ev)
		default:
			return
		}
	}
}

func (a *AuditLog) write(ctx context.Context, ev jobboard.Event) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.store.InsertEvent(ctx, ev); err != nil {
		log.Printf("[audit] %v", err)
	}
}

// ListEvents returns the most recent persisted events.
func (a *AuditLog) ListEvents(ctx context.Context, limit int) ([]jobboard.Event, error) {
	return a.store.ListEvents(ctx, limit)
}
