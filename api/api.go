// Package api exposes the pipeline analyzer over HTTP using fiber.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/config"
	"github.com/meikuraledutech/pipeline/logger"
	"github.com/meikuraledutech/pipeline/metrics"
	"github.com/meikuraledutech/pipeline/validation"
)

// Options wires the app's collaborators. Config, Analyzer and Validator are
// required; a nil Metrics disables instrumentation and the metrics route.
type Options struct {
	Config    *config.Config
	Analyzer  *pipeline.Analyzer
	Validator *validation.Validator
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

// New builds the fiber app with all middleware and routes registered.
func New(opts Options) *fiber.App {
	cfg := opts.Config
	log := logger.Component(opts.Logger, "api")

	app := fiber.New(fiber.Config{
		AppName:         cfg.Title,
		BodyLimit:       cfg.Server.BodyLimit,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		StructValidator: opts.Validator,
		ErrorHandler:    errorHandler(log),
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(requestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(cfg.CORS)))

	h := &handler{
		cfg:      cfg,
		analyzer: opts.Analyzer,
		metrics:  opts.Metrics,
		log:      log,
	}

	app.Get("/", h.root)
	app.Get("/health", h.health)
	app.Post("/api/pipelines/parse", h.parse)

	if opts.Metrics != nil && cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(opts.Metrics.Handler()))
	}

	return app
}

// corsConfig translates the service CORS settings. A wildcard origin combined
// with credentials is served by echoing the caller's origin, since browsers
// reject "*" on credentialed requests.
func corsConfig(c config.CORS) cors.Config {
	cc := cors.Config{
		AllowMethods:     c.AllowMethods,
		AllowHeaders:     c.AllowHeaders,
		AllowCredentials: c.AllowCredentials,
	}
	switch {
	case c.AllowsAnyOrigin() && c.AllowCredentials:
		cc.AllowOriginsFunc = func(string) bool { return true }
	case c.AllowsAnyOrigin():
		cc.AllowOrigins = []string{"*"}
	default:
		cc.AllowOrigins = c.AllowOrigins
	}
	return cc
}

// errorHandler renders every unhandled error as {"detail": ...}.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
		}

		log.Error().
			Err(err).
			Str(logger.FieldRequestID, requestid.FromContext(c)).
			Str("path", c.Path()).
			Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
	}
}

// requestLogger logs one line per request. Health and metrics probes are
// logged at debug level, client errors at warn and server errors at error.
func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		path := c.Path()

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		case path == "/health" || path == "/metrics":
			event = log.Debug()
		default:
			event = log.Info()
		}

		event.
			Str("method", c.Method()).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str(logger.FieldRequestID, requestid.FromContext(c)).
			Msg("request completed")
		return nil
	}
}
