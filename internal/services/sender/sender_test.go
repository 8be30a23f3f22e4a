package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/severyanov/meetapp-backend/internal/lib/smtp"
	"github.com/severyanov/meetapp-backend/internal/models"
)

type TransportMock struct{ mock.Mock }

func (m *TransportMock) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}
func (m *TransportMock) GetSMTPUser() string {
	return m.Called().String(0)
}

type ClientMock struct {
	mock.Mock
	written bytes.Buffer
}

func (m *ClientMock) Mail(from string) error { return m.Called(from).Error(0) }
func (m *ClientMock) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *ClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}
func (m *ClientMock) Quit() error  { return m.Called().Error(0) }
func (m *ClientMock) Close() error { return m.Called().Error(0) }

type writeCloserMock struct{ buf *bytes.Buffer }

func (w *writeCloserMock) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *writeCloserMock) Close() error                { return nil }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func notificationBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(models.SubscriptionNotification{
		Meetup: models.Meetup{
			ID:    1,
			Title: "Go meetup",
			Date:  time.Date(2026, 9, 14, 19, 0, 0, 0, time.UTC),
			Organizer: &models.User{
				Name:  "organizer",
				Email: "org@example.com",
			},
		},
		User: models.User{Name: "subscriber", Email: "sub@example.com"},
	})
	require.NoError(t, err)
	return body
}

func TestSenderService_SendSubscriptionNotification(t *testing.T) {
	t.Run("письмо уходит организатору", func(t *testing.T) {
		client := new(ClientMock)
		wc := &writeCloserMock{buf: &client.written}
		client.On("Mail", "noreply@meetapp.local").Return(nil).Once()
		client.On("Rcpt", "org@example.com").Return(nil).Once()
		client.On("Data").Return(wc, nil).Once()
		client.On("Quit").Return(nil).Once()
		client.On("Close").Return(nil).Once()

		transport := new(TransportMock)
		transport.On("Connect").Return(client, nil).Once()
		transport.On("GetSMTPUser").Return("noreply@meetapp.local")

		service := NewSenderService(newNoopLogger(), transport)

		require.NoError(t, service.SendSubscriptionNotification(notificationBody(t)))

		sent := client.written.String()
		assert.Contains(t, sent, "To: org@example.com")
		assert.Contains(t, sent, "Go meetup")
		assert.Contains(t, sent, "sub@example.com")
		client.AssertExpectations(t)
		transport.AssertExpectations(t)
	})

	t.Run("невалидный JSON возвращает ошибку для nack", func(t *testing.T) {
		service := NewSenderService(newNoopLogger(), new(TransportMock))

		require.Error(t, service.SendSubscriptionNotification([]byte("{broken")))
	})

	t.Run("уведомление без организатора отклоняется", func(t *testing.T) {
		body, err := json.Marshal(models.SubscriptionNotification{
			Meetup: models.Meetup{ID: 2, Title: "orphan"},
			User:   models.User{Name: "subscriber"},
		})
		require.NoError(t, err)

		service := NewSenderService(newNoopLogger(), new(TransportMock))

		require.Error(t, service.SendSubscriptionNotification(body))
	})

	t.Run("ошибка подключения к SMTP возвращается наружу", func(t *testing.T) {
		transport := new(TransportMock)
		transport.On("Connect").Return(nil, errors.New("connection refused")).Once()
		transport.On("GetSMTPUser").Return("noreply@meetapp.local")

		service := NewSenderService(newNoopLogger(), transport)

		require.Error(t, service.SendSubscriptionNotification(notificationBody(t)))
		transport.AssertExpectations(t)
	})
}
