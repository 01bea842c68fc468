package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-writing-api/internal/dto"
	"github.com/noah-isme/gema-writing-api/internal/handler"
	"github.com/noah-isme/gema-writing-api/internal/service"
)

type stubCreditService struct {
	balances map[uint]int
	granted  []dto.CreditGrantRequest
}

func (s *stubCreditService) Balance(_ context.Context, userID uint) (dto.CreditBalanceResponse, error) {
	amount, ok := s.balances[userID]
	if !ok {
		return dto.CreditBalanceResponse{}, service.ErrCreditsNotFound
	}
	return dto.CreditBalanceResponse{UserID: userID, AvailableCredits: amount}, nil
}

func (s *stubCreditService) Grant(_ context.Context, payload dto.CreditGrantRequest) (dto.CreditBalanceResponse, error) {
	if payload.Amount <= 0 {
		return dto.CreditBalanceResponse{}, service.ErrInvalidInput
	}
	s.granted = append(s.granted, payload)
	s.balances[payload.UserID] += payload.Amount
	return dto.CreditBalanceResponse{UserID: payload.UserID, AvailableCredits: s.balances[payload.UserID]}, nil
}

func newCreditApp(svc *stubCreditService, userID uint) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/writing", func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	h := handler.NewCreditHandler(svc, zerolog.Nop())
	h.Register(group)
	h.RegisterAdmin(group.Group("/admin"))
	return app
}

func TestCreditHandlerBalance(t *testing.T) {
	svc := &stubCreditService{balances: map[uint]int{9: 3}}

	resp, err := newCreditApp(svc, 9).Test(httptest.NewRequest(http.MethodGet, "/api/v1/writing/credits", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data dto.CreditBalanceResponse
	decodeEnvelope(t, resp, &data)
	require.Equal(t, 3, data.AvailableCredits)

	resp, err = newCreditApp(svc, 10).Test(httptest.NewRequest(http.MethodGet, "/api/v1/writing/credits", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreditHandlerGrant(t *testing.T) {
	svc := &stubCreditService{balances: map[uint]int{}}
	app := newCreditApp(svc, 1)

	resp := postJSON(t, app, "/api/v1/writing/admin/credits", dto.CreditGrantRequest{UserID: 12, Amount: 4})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data dto.CreditBalanceResponse
	decodeEnvelope(t, resp, &data)
	require.Equal(t, uint(12), data.UserID)
	require.Equal(t, 4, data.AvailableCredits)

	resp = postJSON(t, app, "/api/v1/writing/admin/credits", dto.CreditGrantRequest{UserID: 12, Amount: 0})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
