// Package meetapp предоставляет маршруты для основного приложения.
package meetapp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/severyanov/meetapp-backend/internal/config"
	"github.com/severyanov/meetapp-backend/internal/http/handlers/auth/login"
	"github.com/severyanov/meetapp-backend/internal/http/handlers/auth/register"
	authupdate "github.com/severyanov/meetapp-backend/internal/http/handlers/auth/update"
	"github.com/severyanov/meetapp-backend/internal/http/handlers/file/upload"
	"github.com/severyanov/meetapp-backend/internal/http/handlers/health"
	meetupbrowse "github.com/severyanov/meetapp-backend/internal/http/handlers/meetup/browse"
	meetupcreate "github.com/severyanov/meetapp-backend/internal/http/handlers/meetup/create"
	meetuplist "github.com/severyanov/meetapp-backend/internal/http/handlers/meetup/list"
	meetupread "github.com/severyanov/meetapp-backend/internal/http/handlers/meetup/read"
	meetupremove "github.com/severyanov/meetapp-backend/internal/http/handlers/meetup/remove"
	meetupupdate "github.com/severyanov/meetapp-backend/internal/http/handlers/meetup/update"
	subcreate "github.com/severyanov/meetapp-backend/internal/http/handlers/subscription/create"
	sublist "github.com/severyanov/meetapp-backend/internal/http/handlers/subscription/list"
	subremove "github.com/severyanov/meetapp-backend/internal/http/handlers/subscription/remove"
	"github.com/severyanov/meetapp-backend/internal/http/middlewarectx"
	authservice "github.com/severyanov/meetapp-backend/internal/services/auth"
	fileservice "github.com/severyanov/meetapp-backend/internal/services/file"
	meetupservice "github.com/severyanov/meetapp-backend/internal/services/meetup"
	subservice "github.com/severyanov/meetapp-backend/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	auth *authservice.AuthService, meetups *meetupservice.MeetupService,
	files *fileservice.FileService, subscriptions *subservice.SubscriptionService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки
	r.Post("/users", register.New(logger, auth).ServeHTTP)
	r.Post("/sessions", login.New(logger, auth).ServeHTTP)
	r.Get("/health", health.New(logger).ServeHTTP)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(auth, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))

		r.Put("/users", authupdate.New(logger, auth).ServeHTTP)
		r.Post("/files", upload.New(logger, files).ServeHTTP)

		r.Get("/meetups", meetuplist.New(logger, meetups).ServeHTTP)
		r.Post("/meetups", meetupcreate.New(logger, meetups).ServeHTTP)
		r.Put("/meetups/{id}", meetupupdate.New(logger, meetups).ServeHTTP)
		r.Delete("/meetups/{id}", meetupremove.New(logger, meetups).ServeHTTP)
		r.Get("/meetups/list", meetupbrowse.New(logger, meetups).ServeHTTP)
		r.Get("/meetups/list/{id}", meetupread.New(logger, meetups).ServeHTTP)

		r.Get("/subscriptions", sublist.New(logger, subscriptions).ServeHTTP)
		r.Post("/meetups/{meetupId}/subscribe", subcreate.New(logger, subscriptions).ServeHTTP)
		r.Delete("/subscription/{id}", subremove.New(logger, subscriptions).ServeHTTP)
	})

	// Раздача загруженных баннеров
	fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Get("/files/*", fileServer.ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
