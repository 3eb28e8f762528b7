package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

type recordingSink struct {
	name string
	err  error

	mu       sync.Mutex
	received []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, e)
	return s.err
}

func (s *recordingSink) events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.received...)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func TestQueue_DeliversToEverySink(t *testing.T) {
	m := newTestMetrics()
	good := &recordingSink{name: "good"}
	bad := &recordingSink{name: "bad", err: errors.New("unavailable")}

	q := NewQueue(16, 3, m, good, bad)
	q.Start()
	q.Start()

	for i := 0; i < 10; i++ {
		q.Publish(Event{Type: models.ActivityExpenseAdded, GroupID: "g1", ActorID: "alice"})
	}
	require.NoError(t, q.Shutdown(context.Background()))

	assert.Len(t, good.events(), 10)
	assert.Len(t, bad.events(), 10)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Events.WithLabelValues("good", metrics.OutcomeOK)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Events.WithLabelValues("bad", metrics.OutcomeError)))
	assert.Zero(t, testutil.ToFloat64(m.EventsDropped))

	for _, e := range good.events() {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.OccurredAt.IsZero())
	}
}

func TestQueue_DropsWhenFull(t *testing.T) {
	m := newTestMetrics()
	sink := &recordingSink{name: "sink"}

	// Not started, so nothing drains the buffer.
	q := NewQueue(2, 1, m, sink)
	for i := 0; i < 5; i++ {
		q.Publish(Event{Type: models.ActivityPaymentRecorded, GroupID: "g1"})
	}
	assert.Equal(t, 2, q.Pending())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsDropped))

	q.Start()
	require.NoError(t, q.Shutdown(context.Background()))
	assert.Len(t, sink.events(), 2)
}

func TestQueue_PublishAfterShutdown(t *testing.T) {
	m := newTestMetrics()
	q := NewQueue(4, 1, m)
	q.Start()
	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, q.Shutdown(context.Background()))

	assert.NotPanics(t, func() {
		q.Publish(Event{Type: models.ActivityExpenseDeleted, GroupID: "g1"})
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDropped))
}

func TestQueue_KeepsProvidedIDAndTime(t *testing.T) {
	sink := &recordingSink{name: "sink"}
	q := NewQueue(1, 1, newTestMetrics(), sink)
	q.Start()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q.Publish(Event{ID: "evt-1", Type: models.ActivityExpenseAdded, GroupID: "g1", OccurredAt: at})
	require.NoError(t, q.Shutdown(context.Background()))

	got := sink.events()
	require.Len(t, got, 1)
	assert.Equal(t, "evt-1", got[0].ID)
	assert.True(t, got[0].OccurredAt.Equal(at))
}

type fakeActivityStore struct {
	created []models.Activity
	err     error
}

func (f *fakeActivityStore) CreateActivity(_ context.Context, a *models.Activity) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *a)
	return nil
}

func (f *fakeActivityStore) ListActivitiesByGroup(context.Context, string, int) ([]models.Activity, error) {
	return f.created, nil
}

func TestStoreSink_Deliver(t *testing.T) {
	store := &fakeActivityStore{}
	sink := NewStoreSink(store)
	assert.Equal(t, "store", sink.Name())

	at := time.Unix(1700000000, 0)
	err := sink.Deliver(context.Background(), Event{
		ID:           "evt-1",
		Type:         models.ActivityPaymentRecorded,
		GroupID:      "g1",
		ActorID:      "bob",
		TargetUserID: "alice",
		Description:  "bob paid alice 10.00 USD",
		OccurredAt:   at,
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	a := store.created[0]
	assert.Equal(t, "evt-1", a.ID)
	assert.Equal(t, models.ActivityPaymentRecorded, a.Type)
	assert.Equal(t, "alice", a.TargetUserID)
	assert.Equal(t, int64(1700000000), a.CreatedAt)

	store.err = errors.New("disk full")
	assert.Error(t, sink.Deliver(context.Background(), Event{GroupID: "g1"}))
}

func TestRedisSink_Deliver(t *testing.T) {
	event := Event{
		ID:          "evt-1",
		Type:        models.ActivitySettlementCompleted,
		GroupID:     "g1",
		ActorID:     "bob",
		Description: "settlement completed",
		OccurredAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		wantErr bool
	}{
		{
			name: "publishes JSON to the group channel",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectPublish("ledger:group:g1", string(payload)).SetVal(1)
			},
		},
		{
			name: "returns redis errors",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectPublish("ledger:group:g1", string(payload)).SetErr(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			tt.setup(mock)

			sink := NewRedisSink(db, "ledger:group:", time.Second)
			assert.Equal(t, "redis", sink.Name())
			assert.Equal(t, "ledger:group:g1", sink.Channel("g1"))

			err := sink.Deliver(context.Background(), event)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
