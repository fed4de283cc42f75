package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/photobook/gateway-api/docs" // Swagger docs
	"github.com/photobook/gateway-api/internal/analytics"
	"github.com/photobook/gateway-api/internal/booking"
	"github.com/photobook/gateway-api/internal/clients"
	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/logging"
	"github.com/photobook/gateway-api/internal/metrics"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/rating"
	"github.com/photobook/gateway-api/internal/routes"
	"github.com/photobook/gateway-api/internal/session"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// @title Photobook Gateway API
// @version 1.0
// @description Browser-facing gateway for the photographer booking platform

// @contact.name API Support
// @contact.email support@photobook.example

// @host localhost:8000
// @BasePath /api/v1

// @securityDefinitions.apikey Session
// @in header
// @name X-Session-ID
// @description Browser session id; the photobook_sid cookie is accepted as well.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg)

	// Initialize metrics
	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	// Initialize tracing
	tracingShutdown, err := middleware.InitTracing(&cfg.Observability, &cfg.Server, routes.Version, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to setup tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown tracing")
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Photobook Gateway",
		Immutable:    true,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok && e.Code == fiber.StatusNotFound {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": fiber.Map{
						"code":     "NOT_FOUND",
						"message":  e.Message,
						"trace_id": middleware.TraceID(c),
					},
				})
			}

			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("Request error")
			return middleware.WriteError(c, err)
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Requested-With,Idempotency-Key,X-Session-ID",
		ExposeHeaders:    "X-Session-ID,X-Idempotency-Cached,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(otelfiber.Middleware())

	if cfg.Server.Environment == "development" {
		app.Use(pprof.New())
	}

	// Redis backs sessions, idempotency keys, rate limits and optionally the rating ledger
	redisClient, err := middleware.NewRedisClient(&cfg.Redis, &cfg.AWS, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	backend := clients.NewBackend(&cfg.Backend, logger)

	storage, err := newSessionStorage(cfg, redisClient)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize session storage")
	}
	decoder, err := newTokenDecoder(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize token decoder")
	}
	factory := session.NewFactory(storage, decoder, backend, logger)

	middlewareManager := middleware.NewManager(cfg, factory, redisClient, logger)
	defer middlewareManager.Close()

	ledger, err := newRatingLedger(cfg, redisClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize rating ledger")
	}

	// Setup routes
	routes.Setup(app, cfg, logger, middlewareManager, &routes.Services{
		Backend:   backend,
		Bookings:  booking.NewManager(backend, logger),
		Ratings:   rating.NewService(backend, ledger, logger),
		Analytics: analytics.NewService(backend, cfg.Analytics.TopN, logger),
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logger.WithFields(logrus.Fields{
		"port":        cfg.Server.Port,
		"backend":     cfg.Backend.BaseURL,
		"session":     cfg.Session.Store,
		"rating":      cfg.Rating.Ledger,
		"environment": cfg.Server.Environment,
	}).Info("Starting Photobook gateway")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

func newSessionStorage(cfg *config.Config, redisClient redis.UniversalClient) (session.Storage, error) {
	switch cfg.Session.Store {
	case "memory":
		return session.NewMemoryStorage(cfg.Session.TTL), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("session store %q requires REDIS_ENABLED=true", cfg.Session.Store)
		}
		return session.NewRedisStorage(redisClient, cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// newTokenDecoder verifies tokens against a JWKS when one is configured.
// Otherwise only the expiry claim is read and the backend stays the judge.
func newTokenDecoder(cfg *config.Config, logger *logrus.Logger) (session.TokenDecoder, error) {
	if cfg.JWT.JWKSEndpoint == "" {
		logger.Info("No JWKS endpoint configured, session tokens are checked for expiry only")
		return session.NewUnverifiedDecoder(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return session.NewJWKSDecoder(ctx, cfg.JWT.JWKSEndpoint, cfg.JWT.CacheTTL, cfg.JWT.Issuer, cfg.JWT.Audience, logger)
}

func newRatingLedger(cfg *config.Config, redisClient redis.UniversalClient, logger *logrus.Logger) (rating.Ledger, error) {
	switch cfg.Rating.Ledger {
	case "memory":
		return rating.NewMemoryLedger(), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("rating ledger %q requires REDIS_ENABLED=true", cfg.Rating.Ledger)
		}
		return rating.NewRedisLedger(redisClient), nil
	case "dynamodb":
		client, err := initializeDynamoDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		return rating.NewDynamoLedger(client, cfg.DynamoDB.RatingsTableName), nil
	default:
		return nil, fmt.Errorf("unknown rating ledger %q", cfg.Rating.Ledger)
	}
}

func initializeDynamoDB(cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	ctx := context.Background()

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.DynamoDB.Region)}
	if cfg.AWS.Profile != "" {
		// Named profile for local development; IRSA is picked up from the environment otherwise
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})

	logger.WithFields(logrus.Fields{
		"region":     cfg.DynamoDB.Region,
		"table_name": cfg.DynamoDB.RatingsTableName,
		"endpoint":   cfg.DynamoDB.Endpoint,
	}).Info("DynamoDB client initialized")

	return dynamoClient, nil
}
