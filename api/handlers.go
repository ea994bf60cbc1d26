package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/config"
	"github.com/meikuraledutech/pipeline/logger"
	"github.com/meikuraledutech/pipeline/metrics"
	"github.com/meikuraledutech/pipeline/validation"
)

type handler struct {
	cfg      *config.Config
	analyzer *pipeline.Analyzer
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func (h *handler) root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": h.cfg.Title})
}

func (h *handler) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": h.cfg.Name,
		"port":    h.cfg.Server.Port,
	})
}

// parse validates the submitted pipeline, then reports its node and edge
// counts and whether it is acyclic.
func (h *handler) parse(c fiber.Ctx) error {
	var p pipeline.Pipeline
	if err := bindPipeline(c, &p); err != nil {
		var verr *pipeline.ValidationError
		if !errors.As(err, &verr) {
			verr = validation.FromDecodeError(err)
		}
		h.observeFailure(metrics.OutcomeInvalid)
		h.log.Debug().
			Str(logger.FieldRequestID, requestid.FromContext(c)).
			Err(verr).
			Msg("rejected pipeline")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": verr.Fields})
	}

	start := time.Now()
	res, err := h.analyzer.Analyze(c.Context(), &p)
	if err != nil {
		h.observeFailure(metrics.OutcomeError)
		h.log.Warn().
			Str(logger.FieldRequestID, requestid.FromContext(c)).
			Err(err).
			Msg("pipeline analysis failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if h.metrics != nil {
		h.metrics.ObserveAnalysis(res.NumNodes, res.NumEdges, res.IsDAG, time.Since(start))
	}
	return c.JSON(res)
}

func bindPipeline(c fiber.Ctx, p *pipeline.Pipeline) error {
	if err := validation.CheckEncoding(c.Body()); err != nil {
		return err
	}
	return c.Bind().JSON(p)
}

func (h *handler) observeFailure(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveFailure(outcome)
	}
}
