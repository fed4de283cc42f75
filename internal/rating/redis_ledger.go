package rating

import (
	"context"
	"fmt"
	"time"

	"github.com/photobook/gateway-api/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// RedisLedger claims pairs with SETNX at rating:{booking}#{user}
type RedisLedger struct {
	client redis.UniversalClient
}

func NewRedisLedger(client redis.UniversalClient) *RedisLedger {
	return &RedisLedger{client: client}
}

func (r *RedisLedger) key(res Reservation) string {
	return "rating:" + res.Key()
}

func (r *RedisLedger) Reserve(ctx context.Context, res Reservation) (bool, error) {
	start := time.Now()
	ok, err := r.client.SetNX(ctx, r.key(res), res.PhotographerID, 0).Result()
	if err != nil {
		metrics.RecordRedisOperation("rating_reserve", "error", time.Since(start))
		return false, fmt.Errorf("reserve rating: %w", err)
	}
	metrics.RecordRedisOperation("rating_reserve", "success", time.Since(start))
	return ok, nil
}

func (r *RedisLedger) Release(ctx context.Context, res Reservation) error {
	start := time.Now()
	if err := r.client.Del(ctx, r.key(res)).Err(); err != nil {
		metrics.RecordRedisOperation("rating_release", "error", time.Since(start))
		return fmt.Errorf("release rating: %w", err)
	}
	metrics.RecordRedisOperation("rating_release", "success", time.Since(start))
	return nil
}
