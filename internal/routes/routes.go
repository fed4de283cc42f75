package routes

import (
	"context"
	"time"

	"github.com/photobook/gateway-api/internal/analytics"
	"github.com/photobook/gateway-api/internal/booking"
	"github.com/photobook/gateway-api/internal/clients"
	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/metrics"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/rating"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"
)

// Build information, set with -ldflags at release time
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const serviceName = "photobook-gateway"

// Services are the domain components the handlers delegate to
type Services struct {
	Backend   *clients.Backend
	Bookings  *booking.Manager
	Ratings   *rating.Service
	Analytics *analytics.Service
}

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, mw *middleware.Manager, svc *Services) {
	sessionHandler := NewSessionHandler(logger)
	publicHandler := NewPublicHandler(svc.Backend, logger)
	userHandler := NewUserHandler(svc.Backend, svc.Bookings, svc.Ratings, logger)
	photographerHandler := NewPhotographerHandler(svc.Backend, svc.Bookings, logger)
	adminHandler := NewAdminHandler(svc.Backend, svc.Analytics, logger)

	// Health check endpoints (no session required)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(mw, svc.Backend))
	app.Get("/version", versionHandler)

	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Use(metrics.HTTPMetricsMiddleware())
	api.Use(mw.ErrorLogger.Handle())
	api.Use(mw.Session.Handle())
	api.Use(mw.RateLimit.Handle())

	sessionRoutes := api.Group("/session")
	sessionRoutes.Get("/", sessionHandler.Get)
	sessionRoutes.Get("/access", sessionHandler.Access)
	sessionRoutes.Post("/login/:role", sessionHandler.Login)
	sessionRoutes.Post("/logout", sessionHandler.Logout)

	api.Post("/register/:role", publicHandler.Register)
	api.Post("/contact", publicHandler.Contact)

	userRoutes := api.Group("/user", middleware.RequireRole(models.RoleUser))
	userRoutes.Get("/dashboard", userHandler.Dashboard)
	userRoutes.Get("/profile", userHandler.GetProfile)
	userRoutes.Put("/profile", userHandler.UpdateProfile)
	userRoutes.Get("/photographers", userHandler.ListPhotographers)
	userRoutes.Get("/photographers/:id", userHandler.GetPhotographer)
	userRoutes.Post("/bookings", mw.Idempotency.Require(), userHandler.CreateBooking)
	userRoutes.Get("/bookings", userHandler.ListBookings)
	userRoutes.Get("/history", userHandler.History)
	userRoutes.Get("/notifications", userHandler.Notifications)
	userRoutes.Post("/ratings", mw.Idempotency.Require(), userHandler.Rate)

	photographerRoutes := api.Group("/photographer", middleware.RequireRole(models.RolePhotographer))
	photographerRoutes.Get("/dashboard", photographerHandler.Dashboard)
	photographerRoutes.Get("/profile", photographerHandler.GetProfile)
	photographerRoutes.Put("/profile", photographerHandler.UpdateProfile)
	photographerRoutes.Get("/bookings", photographerHandler.ListBookings)
	photographerRoutes.Put("/bookings/:id/status", photographerHandler.UpdateBookingStatus)
	photographerRoutes.Get("/portfolio", photographerHandler.ListPortfolio)
	photographerRoutes.Post("/portfolio", photographerHandler.CreatePortfolioItem)
	photographerRoutes.Put("/portfolio/:id", photographerHandler.UpdatePortfolioItem)
	photographerRoutes.Delete("/portfolio/:id", photographerHandler.DeletePortfolioItem)
	photographerRoutes.Get("/notifications", photographerHandler.Notifications)

	adminRoutes := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	adminRoutes.Get("/dashboard", adminHandler.Dashboard)
	adminRoutes.Get("/users", adminHandler.ListUsers)
	adminRoutes.Put("/users/:id/status", adminHandler.UpdateUserStatus)
	adminRoutes.Get("/photographers", adminHandler.ListPhotographers)
	adminRoutes.Post("/photographers", adminHandler.RegisterPhotographer)
	adminRoutes.Delete("/photographers/:id", adminHandler.DeletePhotographer)
	adminRoutes.Get("/bookings", adminHandler.ListBookings)
	adminRoutes.Get("/analytics", adminHandler.Analytics)

	// 404 handler
	app.Use(notFoundHandler)
}

// healthCheck returns the health status of the service
// @Summary Health check
// @Description Check if the service is healthy
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /healthz [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   serviceName,
	})
}

// readinessCheck checks Redis and the backend before accepting traffic
// @Summary Readiness check
// @Description Check if Redis and the REST backend are reachable
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /readyz [get]
func readinessCheck(mw *middleware.Manager, backend *clients.Backend) fiber.Handler {
	redisCheck := middleware.RedisHealthCheck(mw.RedisClient, mw.Logger)
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := redisCheck(ctx); err != nil {
			return notReady(c, "redis unavailable", err)
		}
		if err := backend.Ping(ctx); err != nil {
			return notReady(c, "backend unavailable", err)
		}

		return c.JSON(fiber.Map{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
			"breaker":   backend.Breaker().Stats(),
		})
	}
}

func notReady(c *fiber.Ctx, reason string, err error) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"status":    "not ready",
		"reason":    reason,
		"error":     err.Error(),
		"timestamp": time.Now().UTC(),
	})
}

// versionHandler returns version information
// @Summary Version information
// @Description Get service version and build information
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Version info"
// @Router /version [get]
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": serviceName,
		"version": Version,
		"commit":  Commit,
		"built":   BuildTime,
	})
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{
			"code":     "NOT_FOUND",
			"message":  "The requested resource was not found",
			"path":     c.Path(),
			"trace_id": middleware.TraceID(c),
		},
	})
}
