package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/queue"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/vision"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log retention cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Object storage
	blobs, err := storage.NewS3Store(context.Background(), cfg)
	if err != nil {
		slog.Error("object storage init failed", "error", err)
		os.Exit(1)
	}

	// Moderation task queue
	modQueue := queue.NewRedisQueue(cfg)
	if err := modQueue.Ping(context.Background()); err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	// AI classifier (fail-open without an API key)
	classifier := vision.NewOpenAIClassifier(cfg)
	if !cfg.ClassifierEnabled() {
		slog.Warn("OPENAI_API_KEY not set, AI moderation disabled (images pass unflagged)")
	}

	// Services
	freezer := services.NewPostFreezer(database.DB)
	authService := services.NewAuthService(database.DB, cfg)
	userService := services.NewUserService(database.DB)
	postService := services.NewPostService(database.DB, blobs, freezer)
	reportService := services.NewReportService(database.DB, modQueue, blobs)
	pipeline := services.NewModerationPipeline(database.DB, classifier, blobs, freezer, cfg)

	// Moderation workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	for i := 0; i < cfg.ModerationWorkers; i++ {
		go queue.NewWorker(modQueue, pipeline).Run(workerCtx)
	}
	slog.Info("moderation workers started", "count", cfg.ModerationWorkers)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(modQueue)
	postHandler := handlers.NewPostHandler(postService)
	reportHandler := handlers.NewReportHandler(reportService)
	adminReportsHandler := handlers.NewAdminReportsHandler(reportService)
	frozenPostsHandler := handlers.NewFrozenPostsHandler(postService)
	adminUsersHandler := handlers.NewAdminUsersHandler(userService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, postHandler, reportHandler, adminReportsHandler, frozenPostsHandler, adminUsersHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stopWorkers()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := modQueue.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
