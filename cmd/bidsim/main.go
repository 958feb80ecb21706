package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/cld-events/bidsim-api/internal/auth"
	"github.com/cld-events/bidsim-api/internal/config"
	"github.com/cld-events/bidsim-api/internal/logging"
	"github.com/cld-events/bidsim-api/internal/metrics"
	"github.com/cld-events/bidsim-api/internal/middleware"
	"github.com/cld-events/bidsim-api/internal/routes"
	"github.com/cld-events/bidsim-api/internal/store"
)

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
	tracingShutdown, err := middleware.InitTracing(&cfg.Observability, cfg.Server.Environment, logger)
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
		AppName:      "Bidsim API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
			}).Error("Request error")

			return c.Status(code).JSON(fiber.Map{
				"ok":    false,
				"error": "Internal server error",
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: allowOrigin(&cfg.CORS, logger),
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(otelfiber.Middleware())

	// Session issuer: the signing secret is fixed for the process lifetime
	issuer := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	// Initialize middleware manager
	middlewareManager, err := middleware.NewManager(cfg, issuer, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize middleware manager")
	}
	defer middlewareManager.Close()

	// Initialize AWS SDK and DynamoDB client. A store failure here is fatal.
	dynamoClient, err := initializeDynamoDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize DynamoDB client")
	}

	// Google identity verification
	verifier, err := auth.NewGoogleVerifier(&cfg.Google, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize Google verifier")
	}

	// Setup routes
	routes.Setup(app, cfg, logger, middlewareManager, routes.Deps{
		Users:       store.NewDynamoUserStore(dynamoClient, cfg.DynamoDB.UsersTableName, logger),
		Submissions: store.NewDynamoSubmissionStore(dynamoClient, cfg.DynamoDB.SubmissionsTableName, logger),
		Issuer:      issuer,
		Verifier:    verifier,
		OAuth:       auth.NewGoogleOAuth(&cfg.Google),
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logger.WithField("port", cfg.Server.Port).Info("Starting Bidsim API server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// allowOrigin implements the cross-origin policy: exact configured frontend
// origins are allowed, as is any origin under the trusted hosting suffix.
// Requests without an Origin header never reach this check.
func allowOrigin(cfg *config.CORSConfig, logger *logrus.Logger) func(string) bool {
	return func(origin string) bool {
		for _, allowed := range cfg.FrontendOrigins {
			if origin == allowed {
				return true
			}
		}

		if cfg.TrustedSuffix != "" && strings.HasSuffix(origin, cfg.TrustedSuffix) {
			return true
		}

		logger.WithField("origin", origin).Warn("Blocked by CORS")
		return false
	}
}

func initializeDynamoDB(cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	ctx := context.Background()

	var awsCfg aws.Config
	var err error

	if cfg.AWS.Profile != "" {
		// Use specific profile for local development
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.DynamoDB.Region),
			awsconfig.WithSharedConfigProfile(cfg.AWS.Profile),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.DynamoDB.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	logger.WithFields(logrus.Fields{
		"region":            cfg.DynamoDB.Region,
		"users_table":       cfg.DynamoDB.UsersTableName,
		"submissions_table": cfg.DynamoDB.SubmissionsTableName,
	}).Info("DynamoDB client initialized")

	return dynamoClient, nil
}
