package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// StoreSink persists events as activity-feed rows.
type StoreSink struct {
	store storage.ActivityStore
}

// NewStoreSink creates a sink writing to store.
func NewStoreSink(store storage.ActivityStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Name() string { return "store" }

// Deliver writes e as a models.Activity with the event's ID.
func (s *StoreSink) Deliver(ctx context.Context, e Event) error {
	activity := &models.Activity{
		ID:           e.ID,
		Type:         e.Type,
		GroupID:      e.GroupID,
		ActorID:      e.ActorID,
		TargetUserID: e.TargetUserID,
		Description:  e.Description,
		CreatedAt:    e.OccurredAt.Unix(),
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return fmt.Errorf("failed to store activity: %w", err)
	}
	return nil
}

// RedisSink fans events out over Redis pub/sub, one channel per group.
type RedisSink struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisSink creates a sink publishing to "<prefix><groupID>".
func NewRedisSink(rdb *redis.Client, prefix string, timeout time.Duration) *RedisSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RedisSink{rdb: rdb, prefix: prefix, timeout: timeout}
}

func (s *RedisSink) Name() string { return "redis" }

// Channel returns the pub/sub channel for a group.
func (s *RedisSink) Channel(groupID string) string {
	return s.prefix + groupID
}

// Deliver publishes e as JSON.
func (s *RedisSink) Deliver(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.rdb.Publish(ctx, s.Channel(e.GroupID), string(data)).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
