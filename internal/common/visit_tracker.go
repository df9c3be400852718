package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VisitTracker counts per-user daily API activity in Redis. Counters
// expire after 30 days so the keyspace stays bounded.
type VisitTracker struct {
	redis *redis.Client
}

func NewVisitTracker(redis *redis.Client) *VisitTracker {
	return &VisitTracker{redis: redis}
}

func visitKey(userID string, day time.Time) string {
	return fmt.Sprintf("visits:%s:%s", day.UTC().Format("2006-01-02"), userID)
}

// RecordVisit increments today's counter for the user
func (t *VisitTracker) RecordVisit(ctx context.Context, userID string) error {
	key := visitKey(userID, time.Now())

	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	// First visit of the day sets the expiry
	if count == 1 {
		if err := t.redis.Expire(ctx, key, 30*24*time.Hour).Err(); err != nil {
			return fmt.Errorf("failed to set visit expiry: %w", err)
		}
	}

	return nil
}

// GetVisits returns the user's counter for a given day
func (t *VisitTracker) GetVisits(ctx context.Context, userID string, day time.Time) (int64, error) {
	count, err := t.redis.Get(ctx, visitKey(userID, day)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get visits: %w", err)
	}
	return count, nil
}
