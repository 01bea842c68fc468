package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-writing-api/internal/config"
	"github.com/noah-isme/gema-writing-api/internal/handler"
	"github.com/noah-isme/gema-writing-api/internal/middleware"
	"github.com/noah-isme/gema-writing-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	WritingHandler *handler.WritingHandler
	CreditHandler  *handler.CreditHandler
	JWTMiddleware  fiber.Handler
	// ScoreLimiter guards essay submissions; defaults to the configured per-user limit.
	ScoreLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	scoreLimiter := deps.ScoreLimiter
	if scoreLimiter == nil {
		scoreLimiter = middleware.RateLimit("writing-score", cfg.ScoreRateLimit, cfg.ScoreRateWindow)
	}

	writing := api.Group("/writing", jwtMiddleware, middleware.RequireUser())

	if deps.WritingHandler != nil {
		deps.WritingHandler.Register(writing, scoreLimiter)
	}

	if deps.CreditHandler != nil {
		deps.CreditHandler.Register(writing)

		admin := writing.Group("/admin", middleware.RequireRole("admin", "teacher"))
		deps.CreditHandler.RegisterAdmin(admin)
	}
}
