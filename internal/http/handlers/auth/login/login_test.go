package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/severyanov/meetapp-backend/internal/models"
	authservice "github.com/severyanov/meetapp-backend/internal/services/auth"
)

type MockService struct{ mock.Mock }

func (m *MockService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	args := m.Called(ctx, email, rawPassword)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func TestHandler_ServeHTTP(t *testing.T) {
	const userID = "3f2504e0-cccc-41d3-9a0c-0305e82c3301"

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *MockService)
		wantStatus int
	}{
		{
			name: "успешный вход возвращает пользователя и токен",
			body: `{"email":"diego@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "diego@example.com", "secret123").
					Return(&models.User{ID: userID, Email: "diego@example.com"}, "signed-token", nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "неверные учетные данные",
			body: `{"email":"diego@example.com","password":"wrong"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "diego@example.com", "wrong").
					Return(nil, "", authservice.ErrInvalidCredentials).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "невалидный email не проходит валидацию",
			body:       `{"email":"not-an-email","password":"secret123"}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "битый JSON",
			body:       `{broken`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMock(service)

			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

			req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				data := body["data"].(map[string]any)
				assert.Equal(t, "signed-token", data["token"])
			}
			service.AssertExpectations(t)
		})
	}
}
