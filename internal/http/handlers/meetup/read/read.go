// Package read реализует HTTP-обработчик карточки митапа.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/severyanov/meetapp-backend/internal/http/response"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
	meetupservice "github.com/severyanov/meetapp-backend/internal/services/meetup"
)

// Handler управляет HTTP-запросами на карточку митапа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения митапа.
type Service interface {
	Read(ctx context.Context, id int) (*models.Meetup, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.meetup.read"
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

	meetup, err := h.service.Read(r.Context(), id)
	if err != nil {
		if errors.Is(err, meetupservice.ErrMeetupNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("meetup not found"))
			return
		}
		log.Error("failed to read meetup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read meetup"))
		return
	}

	render.JSON(w, r, response.OKWithData(meetup))
}
