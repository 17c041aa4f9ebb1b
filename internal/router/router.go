package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evalio/evalio-go-api/internal/config"
	"github.com/evalio/evalio-go-api/internal/handler"
	"github.com/evalio/evalio-go-api/internal/middleware"
	"github.com/evalio/evalio-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluatorHandler  *handler.EvaluatorHandler
	SubmissionHandler *handler.SubmissionHandler
	AIHandler         *handler.AIHandler
	HealthHandler     fiber.Handler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	if deps.HealthHandler != nil {
		api.Get("/health", deps.HealthHandler)
	}
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	authed := api.Group("", jwtMiddleware)
	student := authed.Group("", middleware.RequireRole("student", "teacher", "admin"))
	teacher := authed.Group("", middleware.RequireRole("teacher", "admin"))

	if deps.EvaluatorHandler != nil {
		deps.EvaluatorHandler.Register(authed.Group("/evaluators"), teacher.Group("/evaluators"))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(student, teacher)
	}

	if deps.AIHandler != nil {
		ai := teacher.Group("/ai", middleware.RateLimit("ai", 30, time.Minute))
		deps.AIHandler.Register(ai)
	}
}
