package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-writing-api/internal/dto"
	"github.com/noah-isme/gema-writing-api/internal/service"
	"github.com/noah-isme/gema-writing-api/internal/utils"
	"github.com/noah-isme/gema-writing-api/pkg/ai"
)

// WritingHandler exposes essay scoring endpoints.
type WritingHandler struct {
	scores   service.WritingService
	combined service.CombinedScoreService
	logger   zerolog.Logger
}

// NewWritingHandler constructs the handler.
func NewWritingHandler(scores service.WritingService, combined service.CombinedScoreService, logger zerolog.Logger) *WritingHandler {
	return &WritingHandler{
		scores:   scores,
		combined: combined,
		logger:   logger.With().Str("component", "writing_handler").Logger(),
	}
}

// Register attaches writing endpoints. Extra handlers run before scoring, typically a rate limiter.
func (h *WritingHandler) Register(router fiber.Router, scoreGuards ...fiber.Handler) {
	router.Post("/scores", append(scoreGuards, h.score)...)
	router.Get("/scores", h.list)
	router.Get("/scores/:id", h.get)
	router.Get("/combined-scores", h.listCombined)
}

func (h *WritingHandler) score(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.WritingScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.scores.Score(c.UserContext(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "essay scored", result)
}

func (h *WritingHandler) list(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	scores, err := h.scores.List(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, scores, "writing scores retrieved", fiber.Map{"count": len(scores)})
}

func (h *WritingHandler) get(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	score, err := h.scores.Get(c.UserContext(), userID, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "writing score retrieved", score)
}

func (h *WritingHandler) listCombined(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	combined, err := h.combined.List(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, combined, "combined scores retrieved", fiber.Map{"count": len(combined)})
}

func (h *WritingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErr *ai.ValidationError
	var analysisErr *ai.AnalysisError

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), validationDetails(err))
	case errors.Is(err, service.ErrCreditsNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user credits not found")
	case errors.Is(err, service.ErrInsufficientCredits):
		return utils.SendError(c, fiber.StatusPaymentRequired, "insufficient credits")
	case errors.Is(err, service.ErrWritingScoreNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "writing score not found")
	case errors.As(err, &validationErr):
		requestLogger(h.logger, c).Warn().Err(err).Msg("analyzer returned an invalid response")
		return utils.SendError(c, fiber.StatusBadGateway, validationErr.Error())
	case errors.As(err, &analysisErr):
		requestLogger(h.logger, c).Error().Err(err).Msg("essay analysis failed")
		return utils.SendError(c, fiber.StatusBadGateway, analysisErr.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("writing request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
