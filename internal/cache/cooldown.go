package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const cooldownKeyPrefix = "market:cooldown:"

// Cooldown rate-limits card requests per chat. A nil Cooldown, or any Redis
// error, lets the request through.
type Cooldown struct {
	tracer trace.Tracer
	client redis.Cmdable
	ttl    time.Duration
}

func NewCooldown(tracer trace.Tracer, client redis.Cmdable, ttl time.Duration) *Cooldown {
	return &Cooldown{tracer: tracer, client: client, ttl: ttl}
}

// Acquire reports whether chatID may request a card now. When it may not,
// the remaining wait is returned.
func (c *Cooldown) Acquire(ctx context.Context, chatID int64) (bool, time.Duration) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return true, 0
	}
	ctx, span := c.tracer.Start(ctx, "cache.cooldown-acquire")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat.id", chatID))

	key := fmt.Sprintf("%s%d", cooldownKeyPrefix, chatID)
	ok, err := c.client.SetNX(ctx, key, time.Now().Unix(), c.ttl).Result()
	if err != nil {
		log.Printf("cooldown check failed for chat %d: %v", chatID, err)
		return true, 0
	}
	if ok {
		return true, 0
	}

	remaining, err := c.client.TTL(ctx, key).Result()
	if err != nil || remaining <= 0 {
		remaining = c.ttl
	}
	span.SetAttributes(attribute.Bool("cooldown.active", true))
	return false, remaining
}

// Release clears the cooldown so a failed request can be retried at once.
func (c *Cooldown) Release(ctx context.Context, chatID int64) {
	if c == nil || c.client == nil {
		return
	}
	key := fmt.Sprintf("%s%d", cooldownKeyPrefix, chatID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cooldown release failed for chat %d: %v", chatID, err)
	}
}
