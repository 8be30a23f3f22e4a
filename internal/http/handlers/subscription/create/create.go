// Package create реализует HTTP-обработчик подписки на митап.
//
// Handler извлекает идентификатор пользователя из контекста и id митапа
// из пути, вызывает бизнес-логику подписки и возвращает созданную запись.
// Каждое нарушение бизнес-правила отдаётся отдельным сообщением.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/severyanov/meetapp-backend/internal/http/middlewarectx"
	"github.com/severyanov/meetapp-backend/internal/http/response"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
	subservice "github.com/severyanov/meetapp-backend/internal/services/subscription"
)

// Handler управляет HTTP-запросами на подписку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подписки.
type Service interface {
	Subscribe(ctx context.Context, userID string, meetupID int) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подписаться на митап
// @Description Подписывает текущего пользователя на митап. Возвращает созданную подписку.
// @Tags Subscriptions
// @Produce json
// @Param meetupId path int true "ID митапа"
// @Success 200 {object} response.Response "Созданная подписка"
// @Failure 400 {object} response.ErrorResponse "Нарушение бизнес-правила подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Митап не найден"
// @Router /meetups/{meetupId}/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	meetupID, err := strconv.Atoi(chi.URLParam(r, "meetupId"))
	if err != nil {
		log.Error("invalid meetup id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid meetup id"))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Subscribe(r.Context(), userID, meetupID)
	if err != nil {
		switch {
		case errors.Is(err, subservice.ErrMeetupNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("meetup not found"))
		case errors.Is(err, subservice.ErrSelfSubscription):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("you can not subscribe to your own meetup"))
		case errors.Is(err, subservice.ErrMeetupExpired):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("subscribe to a past meetup is not permitted"))
		case errors.Is(err, subservice.ErrDuplicateSubscription):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("you can not subscribe two times to the same meetup"))
		case errors.Is(err, subservice.ErrScheduleConflict):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("you can not subscribe to two meetups at the same time"))
		default:
			log.Error("failed to subscribe", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not subscribe"))
		}
		return
	}

	log.Info("subscription created", slog.Int("id", sub.ID), slog.Int("meetup_id", meetupID))
	render.JSON(w, r, response.OKWithData(sub))
}
