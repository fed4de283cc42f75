package session

import (
	"context"
	"fmt"
	"time"

	"github.com/photobook/gateway-api/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists each session as a hash at session:{sid} with a sliding TTL
type RedisStorage struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStorage creates a Redis-backed storage
func NewRedisStorage(client redis.UniversalClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (r *RedisStorage) key(sid string) string {
	return fmt.Sprintf("session:%s", sid)
}

func (r *RedisStorage) Load(ctx context.Context, sid string) (map[string]string, error) {
	start := time.Now()
	key := r.key(sid)

	values, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		metrics.RecordRedisOperation("session_load", "error", time.Since(start))
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(values) > 0 && r.ttl > 0 {
		r.client.Expire(ctx, key, r.ttl)
	}
	metrics.RecordRedisOperation("session_load", "success", time.Since(start))
	return values, nil
}

func (r *RedisStorage) Save(ctx context.Context, sid string, set map[string]string, remove []string) error {
	start := time.Now()
	key := r.key(sid)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(remove) > 0 {
			pipe.HDel(ctx, key, remove...)
		}
		if len(set) > 0 {
			pipe.HSet(ctx, key, set)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		metrics.RecordRedisOperation("session_save", "error", time.Since(start))
		return fmt.Errorf("save session: %w", err)
	}
	metrics.RecordRedisOperation("session_save", "success", time.Since(start))
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context, sid string) error {
	start := time.Now()
	if err := r.client.HDel(ctx, r.key(sid), AllKeys...).Err(); err != nil {
		metrics.RecordRedisOperation("session_clear", "error", time.Since(start))
		return fmt.Errorf("clear session: %w", err)
	}
	metrics.RecordRedisOperation("session_clear", "success", time.Since(start))
	return nil
}
