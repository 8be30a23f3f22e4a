package repository

import (
	"context"
	"fmt"

	"github.com/severyanov/meetapp-backend/internal/models"
)

// CreateFile сохраняет запись о загруженном файле и возвращает её.
func (s *Storage) CreateFile(ctx context.Context, name, path string) (*models.File, error) {
	const op = "storage.CreateFile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO files (name, path)
			  VALUES ($1, $2)
			  RETURNING id, created_at`
	file := &models.File{
		Name: name,
		Path: path,
	}
	if err := s.DB.QueryRowContext(ctx, query, name, path).Scan(&file.ID, &file.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return file, nil
}
