package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/severyanov/meetapp-backend/internal/models"
)

// CreateMeetup вставляет новый митап и возвращает его ID.
func (s *Storage) CreateMeetup(ctx context.Context, meetup models.Meetup) (int, error) {
	const op = "storage.CreateMeetup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO meetups (title, description, location, date, banner_id, organizer_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		meetup.Title, meetup.Description, meetup.Location, meetup.Date,
		meetup.BannerID, meetup.OrganizerID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetMeetupWithOrganizer возвращает митап по ID вместе с организатором и баннером.
// Признак past вычисляется в запросе: date < now().
func (s *Storage) GetMeetupWithOrganizer(ctx context.Context, id int) (*models.Meetup, error) {
	const op = "storage.GetMeetupWithOrganizer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT m.id, m.title, m.description, m.location, m.date, m.date < now(),
			      m.banner_id, m.organizer_id, m.created_at,
			      u.id, u.name, u.email, u.created_at,
			      f.id, f.name, f.path
			  FROM meetups m
			  JOIN users u ON u.id = m.organizer_id
			  LEFT JOIN files f ON f.id = m.banner_id
			  WHERE m.id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var m models.Meetup
	var organizer models.User
	var fileID sql.NullInt64
	var fileName, filePath sql.NullString
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.Past,
		&m.BannerID, &m.OrganizerID, &m.CreatedAt,
		&organizer.ID, &organizer.Name, &organizer.Email, &organizer.CreatedAt,
		&fileID, &fileName, &filePath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.Organizer = &organizer
	if fileID.Valid {
		m.Banner = &models.File{
			ID:   int(fileID.Int64),
			Name: fileName.String,
			Path: filePath.String,
		}
	}
	return &m, nil
}

// UpdateMeetup обновляет данные митапа по его ID и возвращает количество изменённых строк.
func (s *Storage) UpdateMeetup(ctx context.Context, meetup models.Meetup, id int) (int, error) {
	const op = "storage.UpdateMeetup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE meetups
			  SET title = $1, description = $2, location = $3, date = $4, banner_id = $5
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		meetup.Title, meetup.Description, meetup.Location, meetup.Date, meetup.BannerID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveMeetup удаляет митап по ID вместе с его подписками
// и возвращает количество удалённых строк.
func (s *Storage) RemoveMeetup(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveMeetup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM meetups WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListMeetupsByOrganizer возвращает митапы, организованные пользователем,
// по возрастанию даты.
func (s *Storage) ListMeetupsByOrganizer(ctx context.Context, organizerID string) ([]*models.Meetup, error) {
	const op = "storage.ListMeetupsByOrganizer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, location, date, date < now(),
			      banner_id, organizer_id, created_at
			  FROM meetups
			  WHERE organizer_id = $1
			  ORDER BY date`
	rows, err := s.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Meetup
	for rows.Next() {
		var m models.Meetup
		if err = rows.Scan(&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.Past,
			&m.BannerID, &m.OrganizerID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUpcomingMeetups возвращает будущие митапы чужих организаторов с пагинацией.
// Если day задан, выборка ограничивается митапами этого дня.
func (s *Storage) ListUpcomingMeetups(ctx context.Context, excludeOrganizerID string,
	day *time.Time, limit, offset int) ([]*models.Meetup, error) {
	const op = "storage.ListUpcomingMeetups"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT m.id, m.title, m.description, m.location, m.date, m.date < now(),
			      m.banner_id, m.organizer_id, m.created_at,
			      u.id, u.name, u.email, u.created_at
			  FROM meetups m
			  JOIN users u ON u.id = m.organizer_id
			  WHERE m.date > now()
			    AND m.organizer_id <> $1
			    AND ($2::timestamptz IS NULL OR (m.date >= $2 AND m.date < $2 + INTERVAL '1 day'))
			  ORDER BY m.date
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, excludeOrganizerID, day, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Meetup
	for rows.Next() {
		var m models.Meetup
		var organizer models.User
		if err = rows.Scan(&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.Past,
			&m.BannerID, &m.OrganizerID, &m.CreatedAt,
			&organizer.ID, &organizer.Name, &organizer.Email, &organizer.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.Organizer = &organizer
		result = append(result, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
