// Package update реализует HTTP-обработчик изменения митапов.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/severyanov/meetapp-backend/internal/http/middlewarectx"
	"github.com/severyanov/meetapp-backend/internal/http/response"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
	meetupservice "github.com/severyanov/meetapp-backend/internal/services/meetup"
)

// Handler управляет HTTP-запросами на изменение митапов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики изменения митапа.
type Service interface {
	Update(ctx context.Context, organizerID string, id int, req models.DummyMeetup) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.meetup.update"
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

	var req models.DummyMeetup
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Update(r.Context(), userID, id, req); err != nil {
		switch {
		case errors.Is(err, meetupservice.ErrMeetupNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("meetup not found"))
		case errors.Is(err, meetupservice.ErrNotOrganizer):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only the organizer can change the meetup"))
		case errors.Is(err, meetupservice.ErrMeetupOver):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("can not update a past meetup"))
		case errors.Is(err, meetupservice.ErrPastDate):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("meetup date must be in the future"))
		default:
			log.Error("failed to update meetup", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update meetup"))
		}
		return
	}

	log.Info("meetup updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
