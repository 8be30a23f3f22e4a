// Package remove реализует HTTP-обработчик отмены митапов.
package remove

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
	meetupservice "github.com/severyanov/meetapp-backend/internal/services/meetup"
)

// Handler управляет HTTP-запросами на отмену митапов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отмены митапа.
type Service interface {
	Remove(ctx context.Context, organizerID string, id int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.meetup.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid meetup id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Remove(r.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, meetupservice.ErrMeetupNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("meetup not found"))
		case errors.Is(err, meetupservice.ErrNotOrganizer):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only the organizer can cancel the meetup"))
		case errors.Is(err, meetupservice.ErrMeetupOver):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("can not cancel a past meetup"))
		default:
			log.Error("failed to remove meetup", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel meetup"))
		}
		return
	}

	log.Info("meetup removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
