package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/rentiva/walletsync/internal/config"
	"github.com/rentiva/walletsync/internal/middleware"
	"github.com/rentiva/walletsync/internal/session"
	"github.com/rentiva/walletsync/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Sessions *session.Manager
	Cache    *redis.Client
	Logger   *slog.Logger
	Metrics  fiber.Handler
}

// Setup configures middlewares and all gateway routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics)
	}

	handler := wallet.NewHandler(d.Sessions.CurrentStore, d.Cfg.TopupMin, d.Cfg.TopupMax)
	idem := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)

	api := app.Group("/api/v1")
	RegisterWalletRoutes(api, handler, idem)

	return nil
}
