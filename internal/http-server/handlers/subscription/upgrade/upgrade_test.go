package upgrade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/event-reminder/internal/http-server/mware"
	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/services/settlement"
)

type MockUpgrader struct{ mock.Mock }

func (m *MockUpgrader) RequestUpgrade(ctx context.Context, userUID string, tier models.Tier) (string, error) {
	args := m.Called(ctx, userUID, tier)
	return args.String(0), args.Error(1)
}

func TestUpgradeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMock      func(*MockUpgrader)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешный запрос страницы оплаты",
			requestBody: Request{Tier: "premium"},
			userUID:     "uid-1",
			setupMock: func(m *MockUpgrader) {
				m.On("RequestUpgrade", mock.Anything, "uid-1", models.TierPremium).
					Return("https://pay.example.com/A0001", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"redirect_url":"https://pay.example.com/A0001"`,
		},
		{
			name:        "повторная покупка при активной подписке",
			requestBody: Request{Tier: "business"},
			userUID:     "uid-1",
			setupMock: func(m *MockUpgrader) {
				m.On("RequestUpgrade", mock.Anything, "uid-1", models.TierBusiness).
					Return("", settlement.ErrActiveSubscriptionExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"active subscription already exists"`,
		},
		{
			name:           "free нельзя купить",
			requestBody:    Request{Tier: "free"},
			userUID:        "uid-1",
			setupMock:      func(_ *MockUpgrader) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:        "провайдер недоступен",
			requestBody: Request{Tier: "premium"},
			userUID:     "uid-1",
			setupMock: func(m *MockUpgrader) {
				m.On("RequestUpgrade", mock.Anything, "uid-1", models.TierPremium).
					Return("", settlement.ErrPaymentInitiation)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `"error":"payment provider unavailable"`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    Request{Tier: "premium"},
			userUID:        "",
			setupMock:      func(_ *MockUpgrader) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:        "внутренняя ошибка",
			requestBody: Request{Tier: "premium"},
			userUID:     "uid-1",
			setupMock: func(m *MockUpgrader) {
				m.On("RequestUpgrade", mock.Anything, "uid-1", models.TierPremium).
					Return("", errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to request upgrade"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUpgrader)
			tt.setupMock(svc)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/upgrade", bytes.NewReader(body))
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), mware.UserUIDKey, tt.userUID)
				req = req.WithContext(ctx)
			}

			rr := httptest.NewRecorder()
			New(logger, svc)(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
