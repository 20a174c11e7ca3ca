package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrilearn/farmbudget-api/internal/config"
	"github.com/agrilearn/farmbudget-api/internal/handler"
	"github.com/agrilearn/farmbudget-api/internal/middleware"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	ReviewHandler     *handler.ReviewHandler
	PublicHandler     *handler.PublicHandler
	AssessmentHandler *handler.AssessmentHandler
	DashboardHandler  *handler.DashboardHandler
	SettingsHandler   *handler.SettingsHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.SettingsHandler != nil {
		deps.SettingsHandler.RegisterPublic(api)
	}

	// Share links: anonymous, token-gated, rate limited.
	if deps.PublicHandler != nil {
		public := api.Group("/public", middleware.RateLimit("public_view", cfg.PublicViewRateMax, cfg.PublicViewRateWindow))
		deps.PublicHandler.Register(public)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(student)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(student)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.RegisterStudent(student)
	}

	trainer := api.Group("/review", jwtMiddleware, middleware.RequireRole(models.RoleTrainer))
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(trainer)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.RegisterTrainer(trainer)
	}
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.RegisterTrainer(trainer)
	}
}
