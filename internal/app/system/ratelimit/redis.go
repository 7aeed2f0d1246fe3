// internal/app/system/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window Store backed by Redis INCR/EXPIRE, so every
// API instance shares the same counters.
type RedisLimiter struct {
	client   redis.UniversalClient
	prefix   string
	limit    int
	duration time.Duration
}

// NewRedis creates a limiter whose keys live under "ratelimit:<name>:".
func NewRedis(client redis.UniversalClient, name string, limit int, duration time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   "ratelimit:" + name + ":",
		limit:    limit,
		duration: duration,
	}
}

// Allow implements Store.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.duration).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}

// Reset implements Store.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
