package dispatchrun

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/event-reminder/internal/services/dispatch"
)

type MockRunner struct{ mock.Mock }

func (m *MockRunner) RunCycle(ctx context.Context) (dispatch.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(dispatch.Stats), args.Error(1)
}

func TestDispatchRunHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		setupMock      func(*MockRunner)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный цикл возвращает счётчики",
			setupMock: func(m *MockRunner) {
				m.On("RunCycle", mock.Anything).
					Return(dispatch.Stats{Sent: 2, Failed: 1, Skipped: 3}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"sent":2`,
		},
		{
			name: "пустой цикл тоже успех",
			setupMock: func(m *MockRunner) {
				m.On("RunCycle", mock.Anything).Return(dispatch.Stats{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "ошибка цикла",
			setupMock: func(m *MockRunner) {
				m.On("RunCycle", mock.Anything).
					Return(dispatch.Stats{}, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"dispatch cycle failed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockRunner)
			tt.setupMock(runner)

			req := httptest.NewRequest(http.MethodPost, "/dispatch/run", nil)
			rr := httptest.NewRecorder()
			New(logger, runner)(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			runner.AssertExpectations(t)
		})
	}
}
