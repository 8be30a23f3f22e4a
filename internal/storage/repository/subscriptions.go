package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/severyanov/meetapp-backend/internal/models"
)

// CreateSubscription вставляет новую подписку в транзакции. Сначала берётся
// advisory-блокировка по пользователю: она сериализует конкурентные подписки
// одного пользователя, иначе при READ COMMITTED два INSERT на разные митапы
// с одной датой не видят строк друг друга и оба проходят. Под блокировкой
// условный INSERT вставляет строку, только если у пользователя ещё нет
// подписки на митап с той же датой. UNIQUE (user_id, meetup_id) остаётся
// страховкой от повторной подписки на тот же митап.
// Повторная подписка возвращается как ErrSubscriptionExists, занятый слот
// по дате — как ErrScheduleTaken.
func (s *Storage) CreateSubscription(ctx context.Context, userID string, meetupID int) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO subscriptions (user_id, meetup_id)
			  SELECT $1, $2
			  WHERE NOT EXISTS (
			      SELECT 1
			      FROM subscriptions s
			      JOIN meetups m ON m.id = s.meetup_id
			      WHERE s.user_id = $1
			        AND m.date = (SELECT date FROM meetups WHERE id = $2)
			  )
			  RETURNING id, created_at`
	sub := &models.Subscription{
		UserID:   userID,
		MeetupID: meetupID,
	}
	err = tx.QueryRowContext(ctx, query, userID, meetupID).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionExists)
		}
		if errors.Is(err, sql.ErrNoRows) {
			// Строка не вставлена: слот занят либо этим же митапом
			// (повторная подписка), либо другим митапом с той же датой.
			var duplicate bool
			if scanErr := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = $1 AND meetup_id = $2)`,
				userID, meetupID).Scan(&duplicate); scanErr != nil {
				return nil, fmt.Errorf("%s: %w", op, scanErr)
			}
			if duplicate {
				return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionExists)
			}
			return nil, fmt.Errorf("%s: %w", op, ErrScheduleTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// SubscriptionExistsForMeetup проверяет, подписан ли пользователь на митап.
func (s *Storage) SubscriptionExistsForMeetup(ctx context.Context, userID string, meetupID int) (bool, error) {
	const op = "storage.SubscriptionExistsForMeetup"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1
			      FROM subscriptions s
			      JOIN meetups m ON m.id = s.meetup_id
			      WHERE s.user_id = $1 AND m.id = $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID, meetupID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// SubscriptionExistsForDate проверяет, есть ли у пользователя подписка
// на митап с точно такой же датой и временем.
func (s *Storage) SubscriptionExistsForDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	const op = "storage.SubscriptionExistsForDate"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1
			      FROM subscriptions s
			      JOIN meetups m ON m.id = s.meetup_id
			      WHERE s.user_id = $1 AND m.date = $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListUpcomingSubscriptions возвращает подписки пользователя на будущие митапы,
// по возрастанию даты митапа. Каждая запись содержит вложенный митап с организатором.
func (s *Storage) ListUpcomingSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error) {
	const op = "storage.ListUpcomingSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.user_id, s.meetup_id, s.created_at,
			      m.id, m.title, m.description, m.location, m.date, m.date < now(),
			      m.banner_id, m.organizer_id, m.created_at,
			      u.id, u.name, u.email, u.created_at
			  FROM subscriptions s
			  JOIN meetups m ON m.id = s.meetup_id
			  JOIN users u ON u.id = m.organizer_id
			  WHERE s.user_id = $1 AND m.date > now()
			  ORDER BY m.date`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		var m models.Meetup
		var organizer models.User
		if err = rows.Scan(&sub.ID, &sub.UserID, &sub.MeetupID, &sub.CreatedAt,
			&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.Past,
			&m.BannerID, &m.OrganizerID, &m.CreatedAt,
			&organizer.ID, &organizer.Name, &organizer.Email, &organizer.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.Organizer = &organizer
		sub.Meetup = &m
		result = append(result, &sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveSubscription удаляет подписку по ID, если она принадлежит пользователю,
// и возвращает количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, id int, userID string) (int, error) {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
