package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/imagepost-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	postHandler *handlers.PostHandler,
	reportHandler *handlers.ReportHandler,
	adminReportsHandler *handlers.AdminReportsHandler,
	frozenPostsHandler *handlers.FrozenPostsHandler,
	adminUsersHandler *handlers.AdminUsersHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth routes are public, with a stricter rate limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Posts
	api.Post("/posts", middleware.JWTProtected(cfg), postHandler.CreatePost)
	api.Get("/posts", postHandler.ListPosts)
	api.Get("/posts/:id", middleware.JWTProtected(cfg), postHandler.GetPost)

	// Image reports
	api.Get("/reports/categories", reportHandler.Categories)
	api.Post("/reports", middleware.JWTProtected(cfg), reportHandler.CreateReport)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))

	admin.Get("/reports", adminReportsHandler.ListReports)
	admin.Get("/reports/:id", adminReportsHandler.GetReport)
	admin.Patch("/reports/:id/confirm", adminReportsHandler.ConfirmReport)
	admin.Patch("/reports/:id/dismiss", adminReportsHandler.DismissReport)

	admin.Get("/frozen-posts", frozenPostsHandler.ListFrozenPosts)
	admin.Post("/frozen-posts/:id/unfreeze", frozenPostsHandler.UnfreezePost)
	admin.Post("/frozen-posts/:id/freeze-permanent", frozenPostsHandler.FreezePostPermanently)

	admin.Get("/users", adminUsersHandler.ListUsers)
	admin.Post("/users/:id/suspend", adminUsersHandler.SuspendUser)
	admin.Post("/users/:id/unsuspend", adminUsersHandler.UnsuspendUser)
	admin.Post("/users/:id/ban", adminUsersHandler.BanUser)
	admin.Post("/users/:id/unban", adminUsersHandler.UnbanUser)
}
