// Package create реализует HTTP-обработчик создания митапов.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/severyanov/meetapp-backend/internal/http/middlewarectx"
	"github.com/severyanov/meetapp-backend/internal/http/response"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
	meetupservice "github.com/severyanov/meetapp-backend/internal/services/meetup"
)

// Handler управляет HTTP-запросами на создание митапов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания митапа.
type Service interface {
	Create(ctx context.Context, organizerID string, req models.DummyMeetup) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать митап
// @Description Создает новый митап для текущего пользователя. Возвращает ID созданной записи.
// @Tags Meetups
// @Accept json
// @Produce json
// @Param request body models.DummyMeetup true "Данные нового митапа"
// @Success 200 {object} response.Response "Успешное создание митапа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата в прошлом"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /meetups [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.meetup.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	id, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, meetupservice.ErrPastDate) {
			log.Error("meetup date in the past")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("meetup date must be in the future"))
			return
		}
		log.Error("failed to create meetup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create meetup"))
		return
	}

	log.Info("meetup created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
