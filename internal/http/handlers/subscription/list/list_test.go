package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/severyanov/meetapp-backend/internal/http/middlewarectx"
	"github.com/severyanov/meetapp-backend/internal/models"
)

type MockService struct{ mock.Mock }

func (m *MockService) ListUpcoming(ctx context.Context, userID string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

const testUserID = "3f2504e0-7777-41d3-9a0c-0305e82c3301"

func TestHandler_ServeHTTP(t *testing.T) {
	t.Run("подписки с вложенными митапами", func(t *testing.T) {
		subs := []*models.Subscription{
			{ID: 1, UserID: testUserID, MeetupID: 2, Meetup: &models.Meetup{
				ID: 2, Title: "Go meetup", Date: time.Now().Add(time.Hour),
			}},
		}
		service := new(MockService)
		service.On("ListUpcoming", mock.Anything, testUserID).Return(subs, nil).Once()

		handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

		req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, testUserID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "OK", body["status"])
		data, ok := body["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 1)
		first := data[0].(map[string]any)
		assert.Equal(t, "Go meetup", first["meetup"].(map[string]any)["title"])
		service.AssertExpectations(t)
	})

	t.Run("без пользователя в контексте", func(t *testing.T) {
		handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), new(MockService))

		req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ошибка сервиса", func(t *testing.T) {
		service := new(MockService)
		service.On("ListUpcoming", mock.Anything, testUserID).
			Return(nil, errors.New("db down")).Once()

		handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)

		req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, testUserID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		service.AssertExpectations(t)
	})
}
