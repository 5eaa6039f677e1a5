package register

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
)

type MockService struct{ mock.Mock }

func (m *MockService) Register(ctx context.Context, email, username, rawPassword string, phone *string) (string, error) {
	args := m.Called(ctx, email, username, rawPassword, phone)
	return args.String(0), args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			requestBody: Request{
				Email:    "ivan@example.com",
				Username: "ivan",
				Password: "secretpass",
			},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "ivan@example.com", "ivan", "secretpass", (*string)(nil)).
					Return("uid-1", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"uid":"uid-1"`,
		},
		{
			name: "телефон передаётся в сервис",
			requestBody: Request{
				Email:    "ivan@example.com",
				Username: "ivan",
				Password: "secretpass",
				Phone:    "+79990001122",
			},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "ivan@example.com", "ivan", "secretpass",
					mock.MatchedBy(func(p *string) bool {
						return p != nil && *p == "+79990001122"
					})).Return("uid-2", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to decode request"`,
		},
		{
			name: "ошибка валидации: короткий пароль",
			requestBody: Request{
				Email:    "ivan@example.com",
				Username: "ivan",
				Password: "short",
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "ошибка валидации: не email",
			requestBody: Request{
				Email:    "not-an-email",
				Username: "ivan",
				Password: "secretpass",
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "ошибка сервиса",
			requestBody: Request{
				Email:    "ivan@example.com",
				Username: "ivan",
				Password: "secretpass",
			},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return("", errors.New("username already taken"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to register user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			New(logger, svc)(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
