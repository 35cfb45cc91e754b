package jobboard

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonathan/jobboard/internal/types"
)

// EventKind names a board mutation or a refused attempt at one.
type EventKind string

const (
	EventJobPosted             EventKind = "job.posted"
	EventJobUpdated            EventKind = "job.updated"
	EventJobClosed             EventKind = "job.closed"
	EventJobSaved              EventKind = "job.saved"
	EventJobUnsaved            EventKind = "job.unsaved"
	EventApplicationCreated    EventKind = "application.created"
	EventApplicationTransition EventKind = "application.transitioned"
	EventDenied                EventKind = "denied"
)

// Event describes something that happened on the board.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Actor   types.UserKey `json:"actor"`
	Subject string        `json:"subject"`
	Detail  string        `json:"detail,omitempty"`
	At      time.Time     `json:"at"`
}

// Recorder receives board events. Record must not block; the board calls it
// after releasing its lock.
type Recorder interface {
	Record(Event)
}

// LogRecorder writes every event to the standard logger.
type LogRecorder struct{}

// Record implements Recorder.
func (LogRecorder) Record(ev Event) {
	log.Printf("[board] %s actor=%s subject=%s %s", ev.Kind, ev.Actor, ev.Subject, ev.Detail)
}

// MemoryRecorder keeps the most recent events in a ring.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemoryRecorder creates a recorder holding at most limit events.
func NewMemoryRecorder(limit int) *MemoryRecorder {
	if limit <= 0 {
		limit = 500
	}
	return &MemoryRecorder{limit: limit}
}

// Record implements Recorder.
func (m *MemoryRecorder) Record(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	if over := len(m.events) - m.limit; over > 0 {
		m.events = append(m.events[:0], m.events[over:]...)
	}
}

// ListEvents returns up to limit events, newest first.
func (m *MemoryRecorder) ListEvents(_ context.Context, limit int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.events) {
		limit = len(m.events)
	}
	out := make([]Event, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// MultiRecorder fans events out to several recorders.
type MultiRecorder []Recorder

// Record implements Recorder.
func (mr MultiRecorder) Record(ev Event) {
	for _, r := range mr {
		r.Record(ev)
	}
}
