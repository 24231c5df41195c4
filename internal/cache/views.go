// Package cache wraps the Redis client used to invalidate rendered views
// (calendar, queue, dashboard) after a post changes state.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type ViewCache struct {
	client *redis.Client
}

// ViewTTL bounds how stale a cached view can get if an invalidation is lost.
const ViewTTL = 5 * time.Minute

// QueueKey names the cached queue view for one user. Population and
// invalidation must agree on it, so both go through this helper.
func QueueKey(userID int64) string {
	return fmt.Sprintf("views:queue:%d", userID)
}

func CalendarKey(userID int64) string {
	return fmt.Sprintf("views:calendar:%d", userID)
}

func DashboardKey(userID int64) string {
	return fmt.Sprintf("views:dashboard:%d", userID)
}

// New connects to Redis at addr. A nil *ViewCache is usable: every method
// becomes a no-op, so callers never branch on whether caching is enabled.
func New(addr string) (*ViewCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ViewCache{client: client}, nil
}

// InvalidatePostViews drops the cached calendar, queue and dashboard views
// for one user. Best effort: a failed delete only logs, since stale views
// expire on their own TTL.
func (c *ViewCache) InvalidatePostViews(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	keys := []string{
		CalendarKey(userID),
		QueueKey(userID),
		DashboardKey(userID),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (c *ViewCache) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", redis.Nil
	}
	return c.client.Get(ctx, key).Result()
}

func (c *ViewCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *ViewCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
