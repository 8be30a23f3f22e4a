// Package update реализует HTTP-обработчик обновления профиля пользователя.
package update

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
	authservice "github.com/severyanov/meetapp-backend/internal/services/auth"
)

// Handler управляет HTTP-запросами на обновление профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики обновления профиля.
type Service interface {
	UpdateProfile(ctx context.Context, userID string, req models.DummyUpdateProfile) (*models.User, error)
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
	const op = "handlers.auth.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUpdateProfile
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

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrWrongOldPassword):
			log.Error("old password does not match")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("old password does not match"))
		case errors.Is(err, authservice.ErrEmailTaken):
			log.Error("email already taken")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("email already taken"))
		default:
			log.Error("failed to update profile", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update profile"))
		}
		return
	}

	log.Info("profile updated", slog.String("id", user.ID))
	render.JSON(w, r, response.OKWithData(user))
}
