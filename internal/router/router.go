package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assignments/internal/config"
	"github.com/noah-isme/gema-assignments/internal/handler"
	"github.com/noah-isme/gema-assignments/internal/middleware"
	"github.com/noah-isme/gema-assignments/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentAssignmentHandler *handler.StudentAssignmentHandler
	HealthProbes             map[string]handler.HealthProbe
	JWTMiddleware            fiber.Handler
	UnsubmitRateLimit        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.StudentAssignmentHandler != nil {
		students := app.Group("/students", jwtMiddleware, middleware.RequireRole(middleware.RoleStudent))

		rateLimit := deps.UnsubmitRateLimit
		if rateLimit == nil {
			rateLimit = middleware.StudentRateLimit("unsubmit", 5, time.Minute)
		}
		deps.StudentAssignmentHandler.Register(students, rateLimit)
	}
}
