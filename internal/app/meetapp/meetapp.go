// Package meetapp собирает основное HTTP-приложение: хранилище, миграции,
// кеш, очередь уведомлений, сервисы и сервер.
package meetapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/severyanov/meetapp-backend/internal/cache"
	"github.com/severyanov/meetapp-backend/internal/config"
	libjwt "github.com/severyanov/meetapp-backend/internal/lib/jwt"
	"github.com/severyanov/meetapp-backend/internal/lib/rabbitmq"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/migrations"
	authservice "github.com/severyanov/meetapp-backend/internal/services/auth"
	fileservice "github.com/severyanov/meetapp-backend/internal/services/file"
	meetupservice "github.com/severyanov/meetapp-backend/internal/services/meetup"
	subservice "github.com/severyanov/meetapp-backend/internal/services/subscription"
	"github.com/severyanov/meetapp-backend/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	jwtMaker := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	auth := authservice.NewAuthService(db, jwtMaker)
	meetups := meetupservice.NewMeetupService(db, cacheRedis, logger)
	files := fileservice.NewFileService(db, cfg.UploadsDir, logger)
	subscriptions := subservice.NewSubscriptionService(db, db, db,
		rabbitmq.NewPublisher(ch), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, auth, meetups, files, subscriptions)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", sl.Err(closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", sl.Err(closeErr))
		}
		_ = a.db.DB.Close()
		return err
	}
}
