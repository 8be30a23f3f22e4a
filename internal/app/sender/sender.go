// Package sender собирает приложение отправки почтовых уведомлений:
// подключение к RabbitMQ, SMTP транспорт и consumer очереди подписок.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/severyanov/meetapp-backend/internal/config"
	"github.com/severyanov/meetapp-backend/internal/lib/rabbitmq"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/lib/smtp"
	senderservice "github.com/severyanov/meetapp-backend/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, transport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.SubscriptionQueue,
		a.senderService.SendSubscriptionNotification)
	if err != nil {
		a.logger.Error("failed to start subscription notifications consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
