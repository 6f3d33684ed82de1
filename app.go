package main

import (
	"time"

	"noteful/internal/config"
	"noteful/internal/handlers"
	"noteful/internal/middleware"
	"noteful/internal/repositories"
	"noteful/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// newApp wires services and handlers on top of userRepo. publisher may be nil.
func newApp(cfg config.Config, userRepo repositories.UserRepository, publisher services.EventPublisher) *fiber.App {
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	userService := services.NewUserService(userRepo, hasher, publisher)
	authService := services.NewAuthService(userRepo, hasher, cfg.JWT.Secret, cfg.JWT.TTL)

	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New(fiber.Config{
		AppName:      "noteful",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api, middleware.AuthRequired(authService))

	return app
}
