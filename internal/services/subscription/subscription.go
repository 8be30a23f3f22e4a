// Package services содержит бизнес-логику подписок на митапы:
// проверку бизнес-правил, создание подписки и постановку уведомления в очередь.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/severyanov/meetapp-backend/internal/lib/rabbitmq"
	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/models"
	"github.com/severyanov/meetapp-backend/internal/storage/repository"
)

// Ошибки бизнес-правил подписки. Каждая соответствует отдельному
// пользовательскому сообщению в HTTP-ответе.
var (
	// ErrMeetupNotFound митап с указанным id не существует.
	ErrMeetupNotFound = errors.New("meetup not found")
	// ErrSelfSubscription организатор пытается подписаться на свой митап.
	ErrSelfSubscription = errors.New("can not subscribe to your own meetup")
	// ErrMeetupExpired дата митапа уже прошла.
	ErrMeetupExpired = errors.New("can not subscribe to a past meetup")
	// ErrDuplicateSubscription подписка на этот митап уже есть.
	ErrDuplicateSubscription = errors.New("already subscribed to this meetup")
	// ErrScheduleConflict уже есть подписка на другой митап с той же датой.
	ErrScheduleConflict = errors.New("already subscribed to a meetup at the same time")
	// ErrSubscriptionNotFound подписка не найдена или принадлежит другому пользователю.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет подписку атомарно с проверкой слота по дате.
	CreateSubscription(ctx context.Context, userID string, meetupID int) (*models.Subscription, error)
	// SubscriptionExistsForMeetup проверяет подписку пользователя на митап.
	SubscriptionExistsForMeetup(ctx context.Context, userID string, meetupID int) (bool, error)
	// SubscriptionExistsForDate проверяет подписку пользователя на дату.
	SubscriptionExistsForDate(ctx context.Context, userID string, date time.Time) (bool, error)
	// ListUpcomingSubscriptions возвращает подписки на будущие митапы по возрастанию даты.
	ListUpcomingSubscriptions(ctx context.Context, userID string) ([]*models.Subscription, error)
	// RemoveSubscription удаляет подписку пользователя и возвращает число удалённых строк.
	RemoveSubscription(ctx context.Context, id int, userID string) (int, error)
}

// MeetupProvider отдаёт митап вместе с организатором.
type MeetupProvider interface {
	GetMeetupWithOrganizer(ctx context.Context, id int) (*models.Meetup, error)
}

// UserProvider отдаёт пользователя по id.
type UserProvider interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Notifier публикует сообщение в очередь уведомлений.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// SubscriptionService реализует бизнес-логику подписок.
type SubscriptionService struct {
	repo     SubscriptionRepository
	meetups  MeetupProvider
	users    UserProvider
	notifier Notifier
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, meetups MeetupProvider,
	users UserProvider, notifier Notifier, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		meetups:  meetups,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// Subscribe проверяет бизнес-правила и создает подписку пользователя на митап.
// Правила, в порядке проверки: митап существует; подписчик не организатор;
// дата митапа не в прошлом; нет подписки на этот митап; нет подписки на другой
// митап с той же датой. После записи публикуется уведомление {meetup, user};
// ошибка публикации не откатывает подписку и не влияет на результат.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, meetupID int) (*models.Subscription, error) {
	meetup, err := s.meetups.GetMeetupWithOrganizer(ctx, meetupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetupNotFound
		}
		return nil, err
	}

	if meetup.OrganizerID == userID {
		return nil, ErrSelfSubscription
	}
	if meetup.Past {
		return nil, ErrMeetupExpired
	}

	subscribed, err := s.repo.SubscriptionExistsForMeetup(ctx, userID, meetupID)
	if err != nil {
		return nil, err
	}
	if subscribed {
		return nil, ErrDuplicateSubscription
	}

	busy, err := s.repo.SubscriptionExistsForDate(ctx, userID, meetup.Date)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrScheduleConflict
	}

	// Повторная проверка обоих правил выполняется в транзакции с
	// advisory-блокировкой по пользователю, предварительные SELECT
	// нужны только для быстрого ответа без взятия блокировки.
	sub, err := s.repo.CreateSubscription(ctx, userID, meetupID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionExists) {
			return nil, ErrDuplicateSubscription
		}
		if errors.Is(err, repository.ErrScheduleTaken) {
			return nil, ErrScheduleConflict
		}
		return nil, err
	}
	s.log.Info("created new subscription",
		slog.Int("id", sub.ID), slog.Int("meetup_id", meetupID))

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		// Подписка уже создана, уведомление без подписчика не собрать.
		s.log.Warn("failed to load subscriber for notification", sl.Err(err))
		return sub, nil
	}

	notification := models.SubscriptionNotification{
		Meetup: *meetup,
		User:   *user,
	}
	if err := s.notifier.Publish(rabbitmq.SubscriptionKey, notification); err != nil {
		s.log.Warn("failed to publish subscription notification", sl.Err(err))
	}

	return sub, nil
}

// ListUpcoming возвращает подписки пользователя на будущие митапы,
// упорядоченные по возрастанию даты митапа. Пустой список не является ошибкой.
func (s *SubscriptionService) ListUpcoming(ctx context.Context, userID string) ([]*models.Subscription, error) {
	subs, err := s.repo.ListUpcomingSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}
	return subs, nil
}

// Remove удаляет подписку пользователя по её ID.
func (s *SubscriptionService) Remove(ctx context.Context, userID string, id int) error {
	count, err := s.repo.RemoveSubscription(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("remove subscription: %w", err)
	}
	if count == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
