// Package app assembles the HTTP application from a store and a configuration.
package app

import (
	"time"

	"messageapp/internal/access"
	"messageapp/internal/config"
	"messageapp/internal/handlers"
	"messageapp/internal/middleware"
	"messageapp/internal/repositories"
	"messageapp/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Options tweak the app for embedding in tests.
type Options struct {
	// DisableRequestLog turns off the request logger middleware.
	DisableRequestLog bool
}

// ServiceConfig extracts the service settings from the process config.
func ServiceConfig(cfg config.Config) services.Config {
	return services.Config{
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		BcryptCost:  cfg.BcryptCost,
		PageSize:    cfg.PageSize,
		SearchLimit: cfg.SearchLimit,
	}
}

// New builds the Fiber app with every route registered. events may be nil.
// The AuthService is returned so callers can mint tokens directly.
func New(db *gorm.DB, cfg services.Config, events services.EventPublisher, opts Options) (*fiber.App, *services.AuthService) {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	chatRepo := repositories.NewGORMChatRepository(db)
	messageRepo := repositories.NewGORMMessageRepository(db)

	// --- Services ---
	policy := access.NewPolicy(chatRepo, messageRepo)
	authService := services.NewAuthService(userRepo, cfg, events)
	userService := services.NewUserService(userRepo, authService, cfg, events)
	chatService := services.NewChatService(chatRepo, userRepo, policy, cfg, events)
	messageService := services.NewMessageService(messageRepo, policy, cfg, events)

	app := fiber.New(fiber.Config{
		AppName:      "messageapp",
		JSONDecoder:  handlers.StrictJSONDecoder,
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if !opts.DisableRequestLog {
		app.Use(logger.New())
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Routes ---
	requireAuth := middleware.AuthRequired(authService)
	handlers.NewUserHandler(authService, userService).RegisterRoutes(app, requireAuth)
	handlers.NewChatHandler(chatService).RegisterRoutes(app, requireAuth)
	handlers.NewMessageHandler(messageService).RegisterRoutes(app, requireAuth)

	return app, authService
}
