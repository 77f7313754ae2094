// Package serve exposes the current usage view over a small local HTTP API.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/janekbaraniewski/usagebar/internal/panel"
	"pkt.systems/pslog"
)

const DefaultAddr = "127.0.0.1:9477"

type Viewer interface {
	View() panel.View
}

// Refresher is the subset of the poller the API drives.
type Refresher interface {
	TriggerNow() bool
	InFlight() bool
}

type Options struct {
	Addr      string
	Viewer    Viewer
	Refresher Refresher
	Metrics   *Metrics
	Logger    pslog.Logger
}

// Server wraps the Fiber app.
type Server struct {
	app  *fiber.App
	addr string
}

func New(opts Options) (*Server, error) {
	if opts.Viewer == nil {
		return nil, fmt.Errorf("serve: a viewer is required")
	}
	if opts.Refresher == nil {
		return nil, fmt.Errorf("serve: a refresher is required")
	}
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ServerHeader:          "usagebar",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	if opts.Logger != nil {
		app.Use(requestLogger(opts.Logger))
	}

	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		v := opts.Viewer.View()
		return c.JSON(fiber.Map{
			"status":    "ok",
			"state":     v.Kind,
			"in_flight": opts.Refresher.InFlight(),
		})
	})

	api := app.Group("/api/v1")
	api.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(opts.Viewer.View())
	})
	api.Post("/refresh", func(c *fiber.Ctx) error {
		if !opts.Refresher.TriggerNow() {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "refresh already in progress"})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "refreshing"})
	})

	return &Server{app: app, addr: addr}, nil
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Addr() string { return s.addr }

// Listen blocks until context cancellation or a fatal listen error occurs.
func (s *Server) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.app.ShutdownWithContext(shutdownCtx)
		if err == nil {
			err = <-errCh
		}
		return err
	case err := <-errCh:
		return err
	}
}

func requestLogger(logger pslog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		logger.Debug("http request",
			"method", c.Method(),
			"route", route,
			"status", c.Response().StatusCode(),
			"elapsed", time.Since(start),
			"request_id", c.Locals("requestid"),
		)
		return err
	}
}
