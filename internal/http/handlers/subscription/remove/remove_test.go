package remove

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/severyanov/meetapp-backend/internal/http/middlewarectx"
	subservice "github.com/severyanov/meetapp-backend/internal/services/subscription"
)

type MockService struct{ mock.Mock }

func (m *MockService) Remove(ctx context.Context, userID string, id int) error {
	return m.Called(ctx, userID, id).Error(0)
}

const testUserID = "3f2504e0-8888-41d3-9a0c-0305e82c3301"

func newTestRequest(id, userID string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/subscription/"+id, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		ctx = context.WithValue(ctx, middlewarectx.UserID, userID)
	}
	return req.WithContext(ctx)
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		userID     string
		setupMock  func(m *MockService)
		wantStatus int
		wantError  string
	}{
		{
			name:   "успешная отписка",
			id:     "5",
			userID: testUserID,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, testUserID, 5).Return(nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "нечисловой id",
			id:         "abc",
			userID:     testUserID,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid id",
		},
		{
			name:       "без пользователя в контексте",
			id:         "5",
			userID:     "",
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:   "подписка не найдена",
			id:     "5",
			userID: testUserID,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, testUserID, 5).
					Return(subservice.ErrSubscriptionNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantError:  "subscription not found",
		},
		{
			name:   "внутренняя ошибка",
			id:     "5",
			userID: testUserID,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, testUserID, 5).
					Return(errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "could not remove subscription",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMock(service)

			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newTestRequest(tt.id, tt.userID))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			} else {
				assert.Equal(t, "OK", body["status"])
			}
			service.AssertExpectations(t)
		})
	}
}
