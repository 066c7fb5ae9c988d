package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/catalog-search/internal/api/handlers"
	"github.com/catalog-search/internal/api/middleware"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	Course *handlers.CourseHandler
}

// NewApp builds the fiber app serving course lookups.
func NewApp(finder handlers.TitleFinder, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"*"},
		ProxyHeader:             fiber.HeaderXForwardedFor,
	})

	// Recovery middleware
	app.Use(recover.New())

	SetupRoutes(app, Handlers{Course: handlers.NewCourseHandler(finder)}, logger)

	return app
}

// SetupRoutes configures all routes for the application.
func SetupRoutes(app *fiber.App, h Handlers, logger zerolog.Logger) {
	// Apply global logging middleware
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", handlers.Health)
	app.Get("/courses/title", h.Course.GetTitle)
}
