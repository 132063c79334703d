package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sandiara-digital/ged-api/internal/config"
	"github.com/sandiara-digital/ged-api/internal/handler"
	"github.com/sandiara-digital/ged-api/internal/middleware"
	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DocumentHandler   *handler.DocumentHandler
	ActivityHandler   *handler.ActivityHandler
	UserHandler       *handler.UserHandler
	DashboardHandler  *handler.DashboardHandler
	FeedHandler       *handler.FeedHandler
	SessionMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	session := deps.SessionMiddleware
	if session == nil {
		session = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users"))
	}

	if deps.DocumentHandler != nil {
		documents := api.Group("/documents", session)
		deps.DocumentHandler.Register(documents,
			middleware.RequireRole(models.RoleSecretaire),
			middleware.RequireRole(models.RoleMaire),
		)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", session)
		if deps.FeedHandler != nil {
			deps.FeedHandler.Register(activity)
		}
		activity.Use(middleware.RequireRole(models.RoleAdministrateur))
		deps.ActivityHandler.Register(activity)
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", session))
	}
}
