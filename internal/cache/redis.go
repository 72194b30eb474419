package cache

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// InitRedis connects to addr, which may be host:port or a redis:// URL.
// An empty addr returns a nil client: Redis-backed features are optional.
func InitRedis(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Println("REDIS_URL not set, skipping Redis")
		return nil, nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}
	log.Println("Connected to Redis")
	return client, nil
}
