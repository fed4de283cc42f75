package middleware

import (
	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Manager holds all middleware instances
type Manager struct {
	Session     *SessionMiddleware
	Idempotency *IdempotencyMiddleware
	RateLimit   *RateLimitMiddleware
	ErrorLogger *ErrorLoggerMiddleware
	RedisClient redis.UniversalClient
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewManager wires the middleware. A nil redisClient selects the in-memory
// idempotency store and the per-process rate limiter.
func NewManager(cfg *config.Config, factory *session.Factory, redisClient redis.UniversalClient, logger *logrus.Logger) *Manager {
	var idempotencyStore IdempotencyStore
	if redisClient != nil {
		idempotencyStore = NewRedisIdempotencyStore(redisClient)
	} else {
		idempotencyStore = NewMemoryIdempotencyStore()
	}

	return &Manager{
		Session:     NewSessionMiddleware(factory, &cfg.Session, logger),
		Idempotency: NewIdempotencyMiddleware(idempotencyStore, logger),
		RateLimit:   NewRateLimitMiddleware(&cfg.RateLimit, redisClient, logger),
		ErrorLogger: NewErrorLoggerMiddleware(logger),
		RedisClient: redisClient,
		Config:      cfg,
		Logger:      logger,
	}
}

// Close closes all middleware resources
func (m *Manager) Close() error {
	if m.RedisClient != nil {
		return m.RedisClient.Close()
	}
	return nil
}
