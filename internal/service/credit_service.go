package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/dto"
	"github.com/noah-isme/gema-writing-api/internal/repository"
)

// ErrCreditsNotFound indicates the user has no credit ledger entry.
var ErrCreditsNotFound = errors.New("user credits not found")

// ErrInsufficientCredits indicates the balance does not cover an analysis.
var ErrInsufficientCredits = errors.New("insufficient credits")

// CreditService exposes the analysis credit ledger.
type CreditService interface {
	Balance(ctx context.Context, userID uint) (dto.CreditBalanceResponse, error)
	Grant(ctx context.Context, payload dto.CreditGrantRequest) (dto.CreditBalanceResponse, error)
}

type creditService struct {
	credits   repository.CreditRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCreditService constructs the credit ledger service.
func NewCreditService(credits repository.CreditRepository, validate *validator.Validate, logger zerolog.Logger) CreditService {
	return &creditService{
		credits:   credits,
		validator: validate,
		logger:    logger.With().Str("component", "credit_service").Logger(),
	}
}

func (s *creditService) Balance(ctx context.Context, userID uint) (dto.CreditBalanceResponse, error) {
	credits, err := s.credits.GetByUser(ctx, userID)
	if err != nil {
		return dto.CreditBalanceResponse{}, mapCreditError(err)
	}
	return dto.NewCreditBalanceResponse(credits), nil
}

func (s *creditService) Grant(ctx context.Context, payload dto.CreditGrantRequest) (dto.CreditBalanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CreditBalanceResponse{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	credits, err := s.credits.Grant(ctx, payload.UserID, payload.Amount)
	if err != nil {
		return dto.CreditBalanceResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", payload.UserID).
		Int("amount", payload.Amount).
		Int("available_credits", credits.AvailableCredits).
		Msg("credits granted")

	return dto.NewCreditBalanceResponse(credits), nil
}

func mapCreditError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrCreditsNotFound
	case errors.Is(err, repository.ErrInsufficientBalance):
		return ErrInsufficientCredits
	default:
		return err
	}
}
