package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/meikuraledutech/storytree"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type choiceRequest struct {
	Choice string `json:"choice"`
}

type currentRequest struct {
	NodeID string `json:"node_id"`
}

// newApp wires the HTTP routes. genTimeout bounds every call that reaches the
// content generator; zero means no bound beyond the request's own.
func newApp(session *storytree.Session, logger *zap.Logger, genTimeout time.Duration) *fiber.App {
	app := fiber.New()
	app.Use(recoverer.New())
	app.Use(requestid.New())
	app.Use(accessLog(logger.Named("http")))

	withTimeout := func(c fiber.Ctx) (context.Context, context.CancelFunc) {
		if genTimeout <= 0 {
			return context.WithCancel(c.Context())
		}
		return context.WithTimeout(c.Context(), genTimeout)
	}

	// ── Ops ───────────────────────────────────────────────────────────
	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/genres", func(c fiber.Ctx) error {
		return c.JSON(storytree.GenreCatalog)
	})

	// ── Stories ───────────────────────────────────────────────────────
	app.Get("/stories", func(c fiber.Ctx) error {
		list, err := session.Library(c.Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(list)
	})

	app.Post("/stories", func(c fiber.Ctx) error {
		var req storytree.StartRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		ctx, cancel := withTimeout(c)
		defer cancel()
		v, err := session.Start(ctx, req)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(201).JSON(v)
	})

	app.Get("/stories/:id", func(c fiber.Ctx) error {
		v, err := session.View(c.Context(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(v)
	})

	app.Get("/stories/:id/map", func(c fiber.Ctx) error {
		m, err := session.Map(c.Context(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(m)
	})

	// ── Navigation ────────────────────────────────────────────────────
	app.Post("/stories/:id/choices", func(c fiber.Ctx) error {
		var req choiceRequest
		if err := c.Bind().JSON(&req); err != nil || req.Choice == "" {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		ctx, cancel := withTimeout(c)
		defer cancel()
		out, err := session.Choose(ctx, c.Params("id"), req.Choice)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	})

	app.Put("/stories/:id/current", func(c fiber.Ctx) error {
		var req currentRequest
		if err := c.Bind().JSON(&req); err != nil || req.NodeID == "" {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		v, err := session.Revisit(c.Context(), c.Params("id"), req.NodeID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(v)
	})

	return app
}

func writeError(c fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storytree.ErrGenerationFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, storytree.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, storytree.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, storytree.ErrUnknownChoice):
		return fiber.StatusBadRequest
	case errors.Is(err, storytree.ErrInvalidInput):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func accessLog(logger *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Path()
		if path == "/healthz" || path == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		logger.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", path),
			zap.String("ip", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestid.FromContext(c)),
		)
		return err
	}
}
