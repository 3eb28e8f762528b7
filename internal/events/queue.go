// Package events delivers activity events produced after successful ledger
// operations. Publishing never blocks the request path; delivery happens on
// background workers and failures are logged and counted, never returned to
// the caller.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

const deliverTimeout = 10 * time.Second

// Event describes something that happened in a group.
type Event struct {
	ID           string              `json:"id"`
	Type         models.ActivityType `json:"type"`
	GroupID      string              `json:"group_id"`
	ActorID      string              `json:"actor_id"`
	TargetUserID string              `json:"target_user_id,omitempty"`
	Description  string              `json:"description"`
	OccurredAt   time.Time           `json:"occurred_at"`
}

// Publisher accepts events for asynchronous delivery.
type Publisher interface {
	// Publish enqueues e and returns immediately.
	Publish(e Event)
}

// Sink is a delivery target for events.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// Queue is a bounded, multi-worker Publisher. Events published while the
// buffer is full, or after Shutdown, are dropped.
type Queue struct {
	events  chan Event
	sinks   []Sink
	workers int
	metrics *metrics.Metrics

	mu      sync.RWMutex
	running bool
	closed  bool
	wg      sync.WaitGroup
}

var _ Publisher = (*Queue)(nil)

// NewQueue creates a queue holding up to size pending events, delivered by
// the given number of workers to every sink in order.
func NewQueue(size, workers int, m *metrics.Metrics, sinks ...Sink) *Queue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		events:  make(chan Event, size),
		sinks:   sinks,
		workers: workers,
		metrics: m,
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running || q.closed {
		return
	}
	q.running = true

	slog.Info("Event queue starting", "workers", q.workers, "buffer", cap(q.events), "sinks", len(q.sinks))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Publish enqueues e without blocking. Missing ID and OccurredAt are filled in.
func (q *Queue) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(e, "queue closed")
		return
	}
	select {
	case q.events <- e:
	default:
		q.drop(e, "queue full")
	}
}

func (q *Queue) drop(e Event, reason string) {
	q.metrics.EventsDropped.Inc()
	slog.Warn("Event dropped", "reason", reason, "type", e.Type, "group_id", e.GroupID, "event_id", e.ID)
}

// Shutdown stops accepting events and waits for the workers to drain the
// buffer. It returns ctx.Err() if ctx ends first.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Event queue stopped")
		return nil
	case <-ctx.Done():
		slog.Warn("Event queue shutdown timed out", "pending", len(q.events))
		return ctx.Err()
	}
}

// Pending returns the number of buffered events.
func (q *Queue) Pending() int {
	return len(q.events)
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for e := range q.events {
		q.deliver(e)
	}
}

func (q *Queue) deliver(e Event) {
	for _, sink := range q.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err := sink.Deliver(ctx, e)
		cancel()

		q.metrics.Events.WithLabelValues(sink.Name(), metrics.Outcome(err)).Inc()
		if err != nil {
			slog.Error("Event delivery failed",
				"sink", sink.Name(),
				"type", e.Type,
				"group_id", e.GroupID,
				"event_id", e.ID,
				"error", err,
			)
		}
	}
}
