// Package services содержит бизнес-логику управления митапами и их кеширование.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
	"github.com/severyanov/meetapp-backend/internal/storage/repository"
)

// Размер страницы списка митапов, как и в мобильной выдаче.
const pageSize = 10

// Ошибки бизнес-правил митапов.
var (
	// ErrMeetupNotFound митап с указанным id не существует.
	ErrMeetupNotFound = errors.New("meetup not found")
	// ErrNotOrganizer пользователь не является организатором митапа.
	ErrNotOrganizer = errors.New("only the organizer can change the meetup")
	// ErrMeetupOver митап уже прошёл, изменять и отменять его нельзя.
	ErrMeetupOver = errors.New("meetup has already happened")
	// ErrPastDate дата митапа указана в прошлом.
	ErrPastDate = errors.New("meetup date must be in the future")
)

// MeetupRepository определяет методы для работы с митапами в хранилище.
type MeetupRepository interface {
	CreateMeetup(ctx context.Context, meetup models.Meetup) (int, error)
	GetMeetupWithOrganizer(ctx context.Context, id int) (*models.Meetup, error)
	UpdateMeetup(ctx context.Context, meetup models.Meetup, id int) (int, error)
	RemoveMeetup(ctx context.Context, id int) (int, error)
	ListMeetupsByOrganizer(ctx context.Context, organizerID string) ([]*models.Meetup, error)
	ListUpcomingMeetups(ctx context.Context, excludeOrganizerID string,
		day *time.Time, limit, offset int) ([]*models.Meetup, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// MeetupService реализует бизнес-логику работы с митапами, включая кеширование.
type MeetupService struct {
	repo  MeetupRepository
	cache Cache
	log   *slog.Logger
}

// NewMeetupService создает новый экземпляр MeetupService.
func NewMeetupService(repo MeetupRepository, cache Cache, log *slog.Logger) *MeetupService {
	return &MeetupService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новый митап для организатора и возвращает ID.
// Дата должна быть в будущем.
func (s *MeetupService) Create(ctx context.Context, organizerID string, req models.DummyMeetup) (int, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return 0, fmt.Errorf("invalid date: %w", err)
	}
	if date.Before(time.Now()) {
		return 0, ErrPastDate
	}

	meetup := models.Meetup{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        date,
		BannerID:    req.BannerID,
		OrganizerID: organizerID,
	}

	id, err := s.repo.CreateMeetup(ctx, meetup)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new meetup", slog.Int("id", id))
	return id, nil
}

// Update обновляет митап. Разрешено только организатору и только
// для митапов, которые ещё не прошли; новая дата должна быть в будущем.
func (s *MeetupService) Update(ctx context.Context, organizerID string, id int, req models.DummyMeetup) error {
	meetup, err := s.repo.GetMeetupWithOrganizer(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMeetupNotFound
		}
		return err
	}
	if meetup.OrganizerID != organizerID {
		return ErrNotOrganizer
	}
	if meetup.Past {
		return ErrMeetupOver
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	if date.Before(time.Now()) {
		return ErrPastDate
	}

	updated := models.Meetup{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        date,
		BannerID:    req.BannerID,
	}
	if _, err = s.repo.UpdateMeetup(ctx, updated, id); err != nil {
		return err
	}
	s.log.Info("updated meetup", slog.Int("id", id))

	cacheKey := fmt.Sprintf("meetup:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate meetup cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return nil
}

// Remove отменяет митап. Разрешено только организатору и только до его начала.
func (s *MeetupService) Remove(ctx context.Context, organizerID string, id int) error {
	meetup, err := s.repo.GetMeetupWithOrganizer(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMeetupNotFound
		}
		return err
	}
	if meetup.OrganizerID != organizerID {
		return ErrNotOrganizer
	}
	if meetup.Past {
		return ErrMeetupOver
	}

	if _, err = s.repo.RemoveMeetup(ctx, id); err != nil {
		return err
	}
	s.log.Info("removed meetup", slog.Int("id", id))

	cacheKey := fmt.Sprintf("meetup:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate meetup cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return nil
}

// ListByOrganizer возвращает митапы, организованные пользователем.
func (s *MeetupService) ListByOrganizer(ctx context.Context, organizerID string) ([]*models.Meetup, error) {
	meetups, err := s.repo.ListMeetupsByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if meetups == nil {
		meetups = []*models.Meetup{}
	}
	return meetups, nil
}

// Browse возвращает страницу будущих митапов других организаторов.
// day, если задан, ограничивает выборку одним днём; page начинается с 1.
func (s *MeetupService) Browse(ctx context.Context, userID string, day *time.Time, page int) ([]*models.Meetup, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	meetups, err := s.repo.ListUpcomingMeetups(ctx, userID, day, pageSize, offset)
	if err != nil {
		return nil, err
	}
	if meetups == nil {
		meetups = []*models.Meetup{}
	}
	return meetups, nil
}

// Read возвращает карточку митапа с организатором, используя кеш или хранилище.
func (s *MeetupService) Read(ctx context.Context, id int) (*models.Meetup, error) {
	var result *models.Meetup
	cacheKey := fmt.Sprintf("meetup:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read meetup cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetMeetupWithOrganizer(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetupNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache meetup", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}
