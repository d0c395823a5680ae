package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-submit-api/internal/config"
	"github.com/noah-isme/gema-submit-api/internal/handler"
	"github.com/noah-isme/gema-submit-api/internal/middleware"
	"github.com/noah-isme/gema-submit-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	SubmissionHandler *handler.SubmissionHandler
	EventStream       *handler.EventStreamHandler
	UploadHandler     *handler.UploadHandler
	Now               func() time.Time
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(app.Group("/uploads"))
	}

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(deps.Now))

	if deps.AuthHandler != nil {
		var loginLimiter fiber.Handler
		if cfg.LoginRateLimit > 0 {
			loginLimiter = middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute)
		}
		deps.AuthHandler.Register(api.Group("/auth"), loginLimiter)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users"))
	}

	submissions := api.Group("/submissions")
	if deps.EventStream != nil {
		deps.EventStream.Register(submissions)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(submissions)
	}
}
