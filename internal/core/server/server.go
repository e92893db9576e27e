package server

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fleet-route-api/internal/core/config"
	"fleet-route-api/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "fleet-route-api/docs/swagger"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status" example:"ok"`
	Environment string            `json:"environment" example:"production"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
	// checks are evaluated by the health endpoint.
	checks map[string]HealthCheck
}

// New creates a new Server instance with configured middleware.
func New(cfg *config.AppConfig) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "fleet-route-api",
		// The pipeline can legitimately take as long as its own deadline.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Pipeline.Timeout + 10*time.Second,
	})

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Named("http.server"),
		Fields: []string{"requestId", "status", "method", "path", "latency", "error"},
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	s := &Server{
		App:    app,
		cfg:    cfg,
		checks: make(map[string]HealthCheck),
	}

	app.Get("/health", s.health)

	return s
}

// AddHealthCheck registers a named dependency check for GET /health.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// health godoc
// @Summary Service health
// @Description Reports the service status and the status of its dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} server.HealthResponse
// @Failure 503 {object} server.HealthResponse
// @Router /health [get]
func (s *Server) health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:      "ok",
		Environment: s.cfg.Environment,
	}

	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))

		names := make([]string, 0, len(s.checks))
		for name := range s.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		for _, name := range names {
			if err := s.checks[name](ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Get().Info("Stopping server")
	return s.App.ShutdownWithContext(ctx)
}
