package middlewarectx

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
)

type ValidatorMock struct{ mock.Mock }

func (m *ValidatorMock) ValidateToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func TestJWTMiddleware(t *testing.T) {
	const userID = "3f2504e0-9999-41d3-9a0c-0305e82c3301"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		authHeader string
		setupMock  func(m *ValidatorMock)
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "валидный токен пропускает запрос дальше",
			authHeader: "Bearer good-token",
			setupMock: func(m *ValidatorMock) {
				m.On("ValidateToken", mock.Anything, "good-token").Return(userID, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "отсутствие заголовка",
			authHeader: "",
			setupMock:  func(m *ValidatorMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "заголовок без префикса Bearer",
			authHeader: "Token abc",
			setupMock:  func(m *ValidatorMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "просроченный токен",
			authHeader: "Bearer expired-token",
			setupMock: func(m *ValidatorMock) {
				m.On("ValidateToken", mock.Anything, "expired-token").
					Return("", errors.New("token is expired")).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := new(ValidatorMock)
			tt.setupMock(validator)

			var called bool
			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUserID, _ = r.Context().Value(UserID).(string)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			JWTMiddleware(validator, log)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantCalled {
				assert.Equal(t, userID, gotUserID)
			}
			validator.AssertExpectations(t)
		})
	}
}
