// Package services содержит бизнес-логику загрузки файлов (баннеров митапов).
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/severyanov/meetapp-backend/internal/models"
)

// FileRepository определяет методы для работы с записями файлов в хранилище.
type FileRepository interface {
	CreateFile(ctx context.Context, name, path string) (*models.File, error)
}

// FileService сохраняет загруженные файлы на диск и регистрирует их в базе.
type FileService struct {
	repo       FileRepository
	uploadsDir string
	log        *slog.Logger
}

// NewFileService создает новый экземпляр FileService.
func NewFileService(repo FileRepository, uploadsDir string, log *slog.Logger) *FileService {
	return &FileService{
		repo:       repo,
		uploadsDir: uploadsDir,
		log:        log,
	}
}

// Upload сохраняет содержимое файла под уникальным именем в каталоге загрузок
// и создает запись о нём. Оригинальное имя сохраняется в записи.
func (s *FileService) Upload(ctx context.Context, originalName string, src io.Reader) (*models.File, error) {
	const op = "services.file.Upload"

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	storedName := uuid.New().String() + filepath.Ext(originalName)
	dst, err := os.Create(filepath.Join(s.uploadsDir, storedName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	file, err := s.repo.CreateFile(ctx, originalName, storedName)
	if err != nil {
		return nil, err
	}
	file.URL = "/files/" + storedName
	s.log.Info("stored uploaded file", slog.Int("id", file.ID), slog.String("path", storedName))
	return file, nil
}
