package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const statsTotalUsersKey = "stats:total_users"

// StatsCache keeps the registered-user count warm for the dashboard so
// every page view does not hit a COUNT(*).
type StatsCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewStatsCache(client *redisv9.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &StatsCache{client: client, ttl: ttl}
}

func (c *StatsCache) GetTotalUsers(ctx context.Context) (int64, bool, error) {
	raw, err := c.client.Get(ctx, statsTotalUsersKey).Result()
	if err == redisv9.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get total users failed: %w", err)
	}

	total, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached total users failed: %w", err)
	}
	return total, true, nil
}

func (c *StatsCache) SetTotalUsers(ctx context.Context, total int64) error {
	if err := c.client.Set(ctx, statsTotalUsersKey, strconv.FormatInt(total, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set total users failed: %w", err)
	}
	return nil
}
