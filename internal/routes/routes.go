package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/cld-events/bidsim-api/internal/auth"
	"github.com/cld-events/bidsim-api/internal/config"
	"github.com/cld-events/bidsim-api/internal/metrics"
	"github.com/cld-events/bidsim-api/internal/middleware"
	"github.com/cld-events/bidsim-api/internal/models"
	"github.com/cld-events/bidsim-api/internal/store"
	apperrors "github.com/cld-events/bidsim-api/pkg/errors"
)

// Deps carries the constructed collaborators the handlers work against.
type Deps struct {
	Users       store.UserStore
	Submissions store.SubmissionStore
	Issuer      *auth.Issuer
	Verifier    auth.IdentityVerifier
	OAuth       *auth.GoogleOAuth
}

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, middlewareManager *middleware.Manager, deps Deps) {
	authHandler := NewAuthHandler(deps.Users, deps.Issuer, deps.Verifier, deps.OAuth, &cfg.Google, logger)
	submissionHandler := NewSubmissionHandler(deps.Submissions, logger)

	// Health check endpoints (no auth required)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(middlewareManager))

	// Metrics endpoint (no auth required)
	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())

	// Request-scoped middleware. Identity resolution runs before rate
	// limiting so authenticated callers are keyed by user rather than IP.
	app.Use(metrics.HTTPMetricsMiddleware())
	app.Use(middlewareManager.ErrorLogger.Handle())
	app.Use(middlewareManager.Auth.OptionalIdentity())
	app.Use(middlewareManager.RateLimit.Handle())

	// Auth endpoints
	app.Post("/signup", authHandler.Signup)
	app.Post("/login", authHandler.Login)
	app.Post("/google-signin", authHandler.GoogleSignin)
	app.Get("/auth/google", authHandler.GoogleRedirect)
	app.Get("/auth/google/callback", authHandler.GoogleCallback)
	app.Get("/config", authHandler.Config)

	// Submission endpoints: bearer token optional on both
	app.Post("/submit", submissionHandler.Submit)
	app.Get("/submissions", submissionHandler.List)

	// 404 handler
	app.Use(notFoundHandler)
}

// respondError converts an application error to the uniform failure body.
func respondError(c *fiber.Ctx, err error) error {
	appErr := apperrors.AsAppError(err)
	return c.Status(appErr.HTTPStatus()).JSON(models.ErrorResponse{OK: false, Error: appErr.Message})
}

// healthCheck returns the health status of the service
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "bidsim-api",
	})
}

// readinessCheck checks if the service is ready to accept traffic
func readinessCheck(middlewareManager *middleware.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		redisHealthCheck := middleware.RedisHealthCheck(middlewareManager.RedisClient, middlewareManager.Logger)
		if err := redisHealthCheck(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "not ready",
				"reason":    "redis unavailable",
				"error":     err.Error(),
				"timestamp": time.Now().UTC(),
			})
		}

		return c.JSON(fiber.Map{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "bidsim-api",
		})
	}
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		OK:    false,
		Error: "The requested resource was not found",
	})
}
