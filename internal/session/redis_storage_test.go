package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	storage := NewRedisStorage(client, time.Minute)
	sid := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, "session:"+sid) })

	require.NoError(t, storage.Save(ctx, sid, map[string]string{KeyToken: "t", KeyAdmin: "a"}, nil))
	require.NoError(t, storage.Save(ctx, sid, map[string]string{KeyUser: "u"}, []string{KeyAdmin}))

	values, err := storage.Load(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyToken: "t", KeyUser: "u"}, values)

	ttl, err := client.TTL(ctx, "session:"+sid).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, storage.Clear(ctx, sid))
	values, err = storage.Load(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, values)
}
