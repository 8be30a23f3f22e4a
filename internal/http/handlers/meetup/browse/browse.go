// Package browse реализует HTTP-обработчик выдачи будущих митапов
// других организаторов с фильтром по дню и пагинацией.
package browse

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/severyanov/meetapp-backend/internal/http/middlewarectx"
	"github.com/severyanov/meetapp-backend/internal/http/response"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
)

// Handler управляет HTTP-запросами на просмотр ленты митапов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики ленты митапов.
type Service interface {
	Browse(ctx context.Context, userID string, day *time.Time, page int) ([]*models.Meetup, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает GET с query-параметрами date (2006-01-02) и page.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.meetup.browse"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var day *time.Time
	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		// День считается в часовом поясе сервера, не в UTC
		parsed, err := time.ParseInLocation("2006-01-02", rawDate, time.Local)
		if err != nil {
			log.Error("invalid date filter", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date, expected format 2006-01-02"))
			return
		}
		day = &parsed
	}

	page := 1
	if rawPage := r.URL.Query().Get("page"); rawPage != "" {
		parsed, err := strconv.Atoi(rawPage)
		if err != nil || parsed < 1 {
			log.Error("invalid page param")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid page"))
			return
		}
		page = parsed
	}

	meetups, err := h.service.Browse(r.Context(), userID, day, page)
	if err != nil {
		log.Error("failed to browse meetups", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list meetups"))
		return
	}

	render.JSON(w, r, response.OKWithData(meetups))
}
