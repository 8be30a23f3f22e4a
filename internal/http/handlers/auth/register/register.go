// Package register реализует HTTP-обработчик регистрации пользователей.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/severyanov/meetapp-backend/internal/http/response"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
	authservice "github.com/severyanov/meetapp-backend/internal/services/auth"
)

// Handler управляет HTTP-запросами на регистрацию.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req models.DummyRegister) (*models.User, error)
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
// @Summary Зарегистрировать пользователя
// @Description Создает нового пользователя с именем, email и паролем.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.DummyRegister true "Данные нового пользователя"
// @Success 200 {object} response.Response "Созданный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRegister
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

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, authservice.ErrEmailTaken) {
			log.Error("email already taken", slog.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("email already taken"))
			return
		}
		log.Error("failed to register user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register user"))
		return
	}

	log.Info("registered new user", slog.String("id", user.ID))
	render.JSON(w, r, response.OKWithData(user))
}
