package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/observability"
)

// ServerConfig carries what NewServer needs besides the routes.
type ServerConfig struct {
	AppName        string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewServer builds the Fiber app with middlewares and routes registered.
func NewServer(cfg ServerConfig, routes RouteConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: ErrorHandler,
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.RequestTimeout)
	RegisterRoutes(app, routes)
	return app
}
