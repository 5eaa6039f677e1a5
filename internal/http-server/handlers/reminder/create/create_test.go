package create

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
)

type MockService struct{ mock.Mock }

func (m *MockService) Create(ctx context.Context, userUID string, req models.DummyReminder) ([]*models.Reminder, error) {
	args := m.Called(ctx, userUID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reminder), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание: free получает только email",
			requestBody: models.DummyReminder{
				EventID:    1,
				DaysBefore: 3,
				Channels:   []string{"email", "sms"},
			},
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.AnythingOfType("models.DummyReminder")).
					Return([]*models.Reminder{
						{ID: 11, EventID: 1, DaysBefore: 3, Channel: models.ChannelEmail, IsActive: true},
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to decode request"`,
		},
		{
			name: "ошибка валидации: нет каналов",
			requestBody: map[string]any{
				"event_id":    1,
				"days_before": 3,
				"channels":    []string{},
			},
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "отсутствует авторизация",
			requestBody: models.DummyReminder{
				EventID:    1,
				DaysBefore: 3,
				Channels:   []string{"email"},
			},
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name: "ошибка сервиса",
			requestBody: models.DummyReminder{
				EventID:    99,
				DaysBefore: 3,
				Channels:   []string{"email"},
			},
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.Anything).
					Return(nil, errors.New("event not found"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to create reminders"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/reminders", bytes.NewReader(body))
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
