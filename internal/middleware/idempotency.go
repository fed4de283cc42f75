package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/photobook/gateway-api/internal/metrics"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// IdempotencyRecord is a cached 2xx response
type IdempotencyRecord struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}

// IdempotencyStore persists key claims and cached responses
type IdempotencyStore interface {
	// Claim binds fingerprint to key if the key is unused. Otherwise it
	// returns the fingerprint already bound.
	Claim(ctx context.Context, key, fingerprint string, ttl time.Duration) (bool, string, error)
	Load(ctx context.Context, key string) (*IdempotencyRecord, error)
	Save(ctx context.Context, key string, record *IdempotencyRecord, ttl time.Duration) error
	Forget(ctx context.Context, key string) error
}

type IdempotencyMiddleware struct {
	store  IdempotencyStore
	logger *logrus.Logger
	ttl    time.Duration
}

func NewIdempotencyMiddleware(store IdempotencyStore, logger *logrus.Logger) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{
		store:  store,
		logger: logger,
		ttl:    5 * time.Minute,
	}
}

// Require demands an Idempotency-Key on the guarded route. A repeated key
// with the same request replays the first 2xx response; a repeated key with
// a different request, or while the first is still running, is a conflict.
func (i *IdempotencyMiddleware) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idempotencyKey := c.Get("Idempotency-Key")
		if idempotencyKey == "" {
			return WriteError(c, apperrors.New(apperrors.CodeIdempotencyRequired,
				"Idempotency-Key header is required for "+c.Method()+" requests"))
		}
		if _, err := uuid.Parse(idempotencyKey); err != nil {
			return WriteError(c, apperrors.New(apperrors.CodeBadRequest, "Idempotency-Key must be a valid UUID"))
		}

		ctx := c.UserContext()
		key := fmt.Sprintf("idempotency:%s:%s", GetSessionID(c), idempotencyKey)
		fingerprint := i.generateFingerprint(c)
		log := i.logger.WithField("idempotency_key", idempotencyKey)

		claimed, existing, err := i.store.Claim(ctx, key, fingerprint, i.ttl)
		if err != nil {
			log.WithError(err).Error("Failed to claim idempotency key")
			return c.Next()
		}

		if !claimed {
			if existing != fingerprint {
				metrics.RecordIdempotencyHit("conflict")
				return WriteError(c, apperrors.New(apperrors.CodeIdempotencyConflict,
					"Request body differs from original request with same Idempotency-Key"))
			}
			record, err := i.store.Load(ctx, key)
			if err != nil {
				log.WithError(err).Error("Failed to get idempotency record")
			}
			if record == nil {
				metrics.RecordIdempotencyHit("in_progress")
				return WriteError(c, apperrors.New(apperrors.CodeIdempotencyConflict,
					"A request with this Idempotency-Key is still in progress"))
			}
			metrics.RecordIdempotencyHit("replayed")
			return i.returnCachedResponse(c, record)
		}

		handlerErr := c.Next()

		statusCode := c.Response().StatusCode()
		if handlerErr != nil || statusCode < 200 || statusCode >= 300 {
			// failed attempts may be retried with the same key
			if err := i.store.Forget(context.WithoutCancel(ctx), key); err != nil {
				log.WithError(err).Error("Failed to release idempotency key")
			}
			return handlerErr
		}

		record := IdempotencyRecord{
			StatusCode: statusCode,
			Headers:    make(map[string]string),
			Body:       string(c.Response().Body()),
			CreatedAt:  time.Now(),
		}
		c.Response().Header.VisitAll(func(k, v []byte) {
			if shouldCacheHeader(string(k)) {
				record.Headers[string(k)] = string(v)
			}
		})
		if err := i.store.Save(context.WithoutCancel(ctx), key, &record, i.ttl); err != nil {
			log.WithError(err).Error("Failed to store idempotency record")
		} else {
			log.WithField("status_code", statusCode).Debug("Stored idempotency record")
		}
		return nil
	}
}

func (i *IdempotencyMiddleware) generateFingerprint(c *fiber.Ctx) string {
	h := sha256.New()
	h.Write([]byte(c.Method()))
	h.Write([]byte(":"))
	h.Write([]byte(c.Path()))
	h.Write([]byte(":"))
	h.Write(c.Request().URI().QueryString())
	h.Write([]byte(":"))
	h.Write(c.Body())
	h.Write([]byte(":"))
	h.Write([]byte(GetUserID(c)))
	return hex.EncodeToString(h.Sum(nil))
}

func (i *IdempotencyMiddleware) returnCachedResponse(c *fiber.Ctx, record *IdempotencyRecord) error {
	for key, value := range record.Headers {
		c.Set(key, value)
	}
	c.Set("X-Idempotency-Cached", "true")
	return c.Status(record.StatusCode).SendString(record.Body)
}

func shouldCacheHeader(header string) bool {
	switch strings.ToLower(header) {
	case "content-type", "location", "x-request-id":
		return true
	}
	return false
}

// RedisIdempotencyStore keeps claims and records as plain keys with a TTL
type RedisIdempotencyStore struct {
	client redis.UniversalClient
}

func NewRedisIdempotencyStore(client redis.UniversalClient) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (r *RedisIdempotencyStore) Claim(ctx context.Context, key, fingerprint string, ttl time.Duration) (bool, string, error) {
	start := time.Now()
	ok, err := r.client.SetNX(ctx, key+":fingerprint", fingerprint, ttl).Result()
	metrics.RecordRedisOperation("idempotency_claim", redisStatus(err), time.Since(start))
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, fingerprint, nil
	}
	existing, err := r.client.Get(ctx, key+":fingerprint").Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls
		return r.Claim(ctx, key, fingerprint, ttl)
	}
	return false, existing, err
}

func (r *RedisIdempotencyStore) Load(ctx context.Context, key string) (*IdempotencyRecord, error) {
	data, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}
	return &record, nil
}

func (r *RedisIdempotencyStore) Save(ctx context.Context, key string, record *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *RedisIdempotencyStore) Forget(ctx context.Context, key string) error {
	return r.client.Del(ctx, key+":fingerprint", key).Err()
}

func redisStatus(err error) string {
	if err != nil && !errors.Is(err, redis.Nil) {
		return "error"
	}
	return "success"
}

// MemoryIdempotencyStore is the single-process fallback
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	claims  map[string]memoryClaim
	records map[string]*IdempotencyRecord
	now     func() time.Time
}

type memoryClaim struct {
	fingerprint string
	expiresAt   time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		claims:  make(map[string]memoryClaim),
		records: make(map[string]*IdempotencyRecord),
		now:     time.Now,
	}
}

func (m *MemoryIdempotencyStore) Claim(_ context.Context, key, fingerprint string, ttl time.Duration) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.claims[key]; ok && m.now().Before(c.expiresAt) {
		return false, c.fingerprint, nil
	}
	delete(m.records, key)
	m.claims[key] = memoryClaim{fingerprint: fingerprint, expiresAt: m.now().Add(ttl)}
	return true, fingerprint, nil
}

func (m *MemoryIdempotencyStore) Load(_ context.Context, key string) (*IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.claims[key]; !ok || !m.now().Before(c.expiresAt) {
		return nil, nil
	}
	return m.records[key], nil
}

func (m *MemoryIdempotencyStore) Save(_ context.Context, key string, record *IdempotencyRecord, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = record
	return nil
}

func (m *MemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, key)
	delete(m.records, key)
	return nil
}
