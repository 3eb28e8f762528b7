package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const defaultActivityLimit = 50

// CreateActivity appends an activity-feed entry.
func (s *SQLiteStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (id, type, group_id, actor_id, target_user_id, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		activity.ID, string(activity.Type), activity.GroupID, activity.ActorID,
		nullString(activity.TargetUserID), activity.Description, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

// ListActivitiesByGroup returns the most recent entries of a group.
// A non-positive limit falls back to 50.
func (s *SQLiteStore) ListActivitiesByGroup(ctx context.Context, groupID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, group_id, actor_id, COALESCE(target_user_id, ''), description, created_at
		 FROM activities WHERE group_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var activityType string
		if err := rows.Scan(&a.ID, &activityType, &a.GroupID, &a.ActorID, &a.TargetUserID, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = models.ActivityType(activityType)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}
