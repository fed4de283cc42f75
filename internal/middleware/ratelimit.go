package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/metrics"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// tokenBucket refills rps tokens per window up to burst. last_refill only
// advances by the time the added tokens account for, so partial intervals
// carry over to the next call. It returns {allowed, remaining}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local tokens = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local now_ms = tonumber(ARGV[4])

local bucket = redis.call("HMGET", key, "tokens", "last_refill")
local current_tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2])

if last_refill == nil or current_tokens >= capacity then
    last_refill = now_ms
else
    local added = math.floor((now_ms - last_refill) * tokens / interval_ms)
    if added > 0 then
        current_tokens = math.min(capacity, current_tokens + added)
        if current_tokens >= capacity then
            last_refill = now_ms
        else
            last_refill = last_refill + math.floor(added * interval_ms / tokens)
        end
    end
end

local allowed = 0
if current_tokens >= 1 then
    current_tokens = current_tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", current_tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, 3600)
return {allowed, current_tokens}`)

var errRateLimited = apperrors.New(apperrors.CodeRateLimited, "Rate limit exceeded. Please try again later.")

type RateLimitMiddleware struct {
	config      *config.RateLimitConfig
	redisClient redis.UniversalClient
	logger      *logrus.Logger
	now         func() time.Time
}

func NewRateLimitMiddleware(cfg *config.RateLimitConfig, redisClient redis.UniversalClient, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
		now:         time.Now,
	}
}

// Handle limits requests per identity, session or client IP. Without Redis
// the limit is enforced per process.
func (r *RateLimitMiddleware) Handle() fiber.Handler {
	if !r.config.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if r.redisClient == nil {
		return r.local()
	}

	return func(c *fiber.Ctx) error {
		if r.exempt(c.Path()) {
			return c.Next()
		}

		key, keyType := r.generateKey(c)
		allowed, remaining, err := r.checkRateLimit(c.UserContext(), key)
		if err != nil {
			r.logger.WithError(err).Error("Rate limit check failed")
			// fail open
			return c.Next()
		}

		resetTime := r.now().Add(r.config.WindowSize).Truncate(time.Second)
		r.setRateLimitHeaders(c, remaining, resetTime)

		if !allowed {
			r.logger.WithFields(logrus.Fields{
				"key":    key,
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("Rate limit exceeded")
			metrics.RecordRateLimitDrop(keyType)
			return WriteError(c, errRateLimited)
		}

		return c.Next()
	}
}

// local approximates the bucket with a fixed window of burst requests
// spread over the time rps needs to refill them
func (r *RateLimitMiddleware) local() fiber.Handler {
	expiration := r.config.WindowSize
	if r.config.RPS > 0 && r.config.Burst > r.config.RPS {
		expiration = r.config.WindowSize * time.Duration(r.config.Burst) / time.Duration(r.config.RPS)
	}
	return limiter.New(limiter.Config{
		Max:        r.config.Burst,
		Expiration: expiration,
		Next: func(c *fiber.Ctx) bool {
			return r.exempt(c.Path())
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			key, _ := r.generateKey(c)
			return key
		},
		LimitReached: func(c *fiber.Ctx) error {
			_, keyType := r.generateKey(c)
			metrics.RecordRateLimitDrop(keyType)
			return WriteError(c, errRateLimited)
		},
	})
}

func (r *RateLimitMiddleware) exempt(path string) bool {
	for _, p := range r.config.ExemptPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// generateKey prefers the signed-in identity, then the session, then the IP
func (r *RateLimitMiddleware) generateKey(c *fiber.Ctx) (string, string) {
	if userID := GetUserID(c); userID != "" {
		return fmt.Sprintf("ratelimit:user:%s", userID), "user"
	}
	if sid := GetSessionID(c); sid != "" {
		return fmt.Sprintf("ratelimit:session:%s", sid), "session"
	}
	return fmt.Sprintf("ratelimit:ip:%s", clientIP(c)), "ip"
}

func clientIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}

func (r *RateLimitMiddleware) checkRateLimit(ctx context.Context, key string) (bool, int, error) {
	start := time.Now()
	result, err := tokenBucket.Run(ctx, r.redisClient, []string{key},
		r.config.Burst, r.config.RPS, r.config.WindowSize.Milliseconds(), r.now().UnixMilli()).Int64Slice()
	metrics.RecordRedisOperation("ratelimit", redisStatus(err), time.Since(start))
	if err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit script: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("unexpected script result format")
	}
	return result[0] == 1, int(result[1]), nil
}

func (r *RateLimitMiddleware) setRateLimitHeaders(c *fiber.Ctx, remaining int, resetTime time.Time) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(r.config.RPS))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

	if remaining <= 0 {
		retryAfter := int(time.Until(resetTime).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set("Retry-After", strconv.Itoa(retryAfter))
	}
}
