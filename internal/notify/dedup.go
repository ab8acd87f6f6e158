package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDeduper заявляет ключи напоминаний через SET NX с TTL
type RedisDeduper struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisDeduper создает RedisDeduper
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{redis: client, ttl: ttl}
}

// Claim возвращает true, если ключ еще не был заявлен
func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return d.redis.SetNX(ctx, "reminder:"+key, 1, d.ttl).Result()
}
