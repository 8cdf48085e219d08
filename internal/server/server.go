package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rentiva/walletsync/internal/config"
	"github.com/rentiva/walletsync/internal/routes"
	"github.com/rentiva/walletsync/internal/session"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the gateway server and delegates route wiring to
// routes.Setup. The Prometheus registry is exposed through Fiber's
// net/http adaptor.
func New(cfg config.Config, sessions *session.Manager, cache *redis.Client, registry *prometheus.Registry, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	var metricsHandler fiber.Handler
	if registry != nil {
		metricsHandler = adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	deps := routes.Deps{
		Cfg:      cfg,
		Sessions: sessions,
		Cache:    cache,
		Logger:   logger,
		Metrics:  metricsHandler,
	}
	if err := routes.Setup(app, deps); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
