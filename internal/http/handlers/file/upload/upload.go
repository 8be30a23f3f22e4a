// Package upload реализует HTTP-обработчик загрузки файлов (баннеров митапов).
package upload

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/severyanov/meetapp-backend/internal/http/response"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
)

// Максимальный размер загружаемого файла.
const maxUploadSize = 10 << 20

// Handler управляет HTTP-запросами на загрузку файлов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики загрузки файла.
type Service interface {
	Upload(ctx context.Context, originalName string, src io.Reader) (*models.File, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP принимает multipart-форму c полем file и возвращает созданную запись.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.file.upload"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		log.Error("file field missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("file field is required"))
		return
	}
	defer func() {
		_ = src.Close()
	}()

	file, err := h.service.Upload(r.Context(), header.Filename, src)
	if err != nil {
		log.Error("failed to store file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not store file"))
		return
	}

	log.Info("file uploaded", slog.Int("id", file.ID))
	render.JSON(w, r, response.OKWithData(file))
}
