package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/slackbot-settings/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Staff   *handlers.StaffHandler
	Storage *handlers.StorageHandler
	Metrics fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	api := app.Group("/api")

	api.Get("/staff", cfg.Staff.List)
	api.Post("/staff", cfg.Staff.Replace)
	api.Get("/staff/escalation", cfg.Staff.Escalation)

	api.Get("/db", cfg.Storage.Stats)
	api.Post("/db", cfg.Storage.Update)
}
