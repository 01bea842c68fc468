package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-writing-api/internal/dto"
	"github.com/noah-isme/gema-writing-api/internal/service"
	"github.com/noah-isme/gema-writing-api/internal/utils"
)

// CreditHandler exposes the analysis credit ledger.
type CreditHandler struct {
	service service.CreditService
	logger  zerolog.Logger
}

// NewCreditHandler constructs the handler.
func NewCreditHandler(service service.CreditService, logger zerolog.Logger) *CreditHandler {
	return &CreditHandler{
		service: service,
		logger:  logger.With().Str("component", "credit_handler").Logger(),
	}
}

// Register attaches the balance endpoint.
func (h *CreditHandler) Register(router fiber.Router) {
	router.Get("/credits", h.balance)
}

// RegisterAdmin attaches ledger management endpoints; callers guard the group by role.
func (h *CreditHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/credits", h.grant)
}

func (h *CreditHandler) balance(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	balance, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "credits retrieved", balance)
}

func (h *CreditHandler) grant(c *fiber.Ctx) error {
	var payload dto.CreditGrantRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	balance, err := h.service.Grant(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("user_id", payload.UserID).
		Int("amount", payload.Amount).
		Msg("credits granted via admin api")

	return utils.SendSuccess(c, "credits granted", balance)
}

func (h *CreditHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), validationDetails(err))
	case errors.Is(err, service.ErrCreditsNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user credits not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("credit request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
