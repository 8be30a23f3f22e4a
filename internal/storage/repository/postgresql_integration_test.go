package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/severyanov/meetapp-backend/internal/models"
)

func testUser(email string) models.User {
	return models.User{
		Name:         "Diego",
		Email:        email,
		PasswordHash: "hash",
	}
}

func TestStorage_CreateSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerID := factory.CreateUser(t, "organizer", "org@example.com", "hash")
	subscriberID := factory.CreateUser(t, "subscriber", "sub@example.com", "hash")

	date := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	meetupID := factory.CreateMeetup(t, "Go meetup", "Moscow", date, organizerID)

	t.Run("успешная вставка", func(t *testing.T) {
		sub, err := storage.CreateSubscription(context.Background(), subscriberID, meetupID)
		require.NoError(t, err)
		assert.NotZero(t, sub.ID)
		assert.Equal(t, subscriberID, sub.UserID)
		assert.Equal(t, meetupID, sub.MeetupID)

		verification := NewTestVerification(storage)
		verification.VerifySubscriptionExists(t, sub.ID)
	})

	t.Run("повторная вставка того же митапа отклоняется как дубликат", func(t *testing.T) {
		_, err := storage.CreateSubscription(context.Background(), subscriberID, meetupID)
		require.ErrorIs(t, err, ErrSubscriptionExists)
	})

	t.Run("другой митап с той же датой занимает слот", func(t *testing.T) {
		otherMeetupID := factory.CreateMeetup(t, "Another meetup", "Moscow", date, organizerID)

		_, err := storage.CreateSubscription(context.Background(), subscriberID, otherMeetupID)
		require.ErrorIs(t, err, ErrScheduleTaken)
	})

	t.Run("митап в другое время того же дня разрешён", func(t *testing.T) {
		laterMeetupID := factory.CreateMeetup(t, "Evening meetup", "Moscow",
			date.Add(3*time.Hour), organizerID)

		sub, err := storage.CreateSubscription(context.Background(), subscriberID, laterMeetupID)
		require.NoError(t, err)
		assert.NotZero(t, sub.ID)
	})
}

func TestStorage_CreateSubscription_Concurrent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerID := factory.CreateUser(t, "organizer", "org@example.com", "hash")
	subscriberID := factory.CreateUser(t, "subscriber", "sub@example.com", "hash")

	date := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	firstMeetupID := factory.CreateMeetup(t, "First meetup", "Moscow", date, organizerID)
	secondMeetupID := factory.CreateMeetup(t, "Second meetup", "Moscow", date, organizerID)

	// Конкурентные подписки одного пользователя на два митапа с одной датой:
	// advisory-блокировка сериализует вставки, пройти должна ровно одна
	results := make(chan error, 2)
	for _, meetupID := range []int{firstMeetupID, secondMeetupID} {
		go func(id int) {
			_, err := storage.CreateSubscription(context.Background(), subscriberID, id)
			results <- err
		}(meetupID)
	}

	var succeeded, conflicted int
	for range 2 {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrScheduleTaken):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	var count int
	err := storage.DB.QueryRow(
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`, subscriberID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStorage_ListUpcomingSubscriptions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerID := factory.CreateUser(t, "organizer", "org@example.com", "hash")
	subscriberID := factory.CreateUser(t, "subscriber", "sub@example.com", "hash")

	// Прошедший митап не должен попасть в выдачу
	pastMeetupID := factory.CreateMeetup(t, "Past meetup", "Moscow",
		time.Now().Add(-48*time.Hour), organizerID)
	factory.CreateSubscription(t, subscriberID, pastMeetupID)

	// Будущие митапы вставляются в обратном хронологическом порядке
	laterMeetupID := factory.CreateMeetup(t, "Later meetup", "Moscow",
		time.Now().Add(96*time.Hour), organizerID)
	factory.CreateSubscription(t, subscriberID, laterMeetupID)

	soonMeetupID := factory.CreateMeetup(t, "Soon meetup", "Moscow",
		time.Now().Add(24*time.Hour), organizerID)
	factory.CreateSubscription(t, subscriberID, soonMeetupID)

	subs, err := storage.ListUpcomingSubscriptions(context.Background(), subscriberID)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, soonMeetupID, subs[0].MeetupID)
	assert.Equal(t, laterMeetupID, subs[1].MeetupID)

	require.NotNil(t, subs[0].Meetup)
	assert.Equal(t, "Soon meetup", subs[0].Meetup.Title)
	require.NotNil(t, subs[0].Meetup.Organizer)
	assert.Equal(t, "org@example.com", subs[0].Meetup.Organizer.Email)
	assert.False(t, subs[0].Meetup.Past)
}

func TestStorage_RemoveSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerID := factory.CreateUser(t, "organizer", "org@example.com", "hash")
	subscriberID := factory.CreateUser(t, "subscriber", "sub@example.com", "hash")
	strangerID := factory.CreateUser(t, "stranger", "stranger@example.com", "hash")

	meetupID := factory.CreateMeetup(t, "Go meetup", "Moscow",
		time.Now().Add(48*time.Hour), organizerID)
	subscriptionID := factory.CreateSubscription(t, subscriberID, meetupID)

	t.Run("чужая подписка не удаляется", func(t *testing.T) {
		count, err := storage.RemoveSubscription(context.Background(), subscriptionID, strangerID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("своя подписка удаляется", func(t *testing.T) {
		count, err := storage.RemoveSubscription(context.Background(), subscriptionID, subscriberID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		verification := NewTestVerification(storage)
		verification.VerifySubscriptionDeleted(t, subscriptionID)
	})
}

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	t.Run("email должен быть уникальным", func(t *testing.T) {
		_, err := storage.CreateUser(context.Background(), testUser("diego@example.com"))
		require.NoError(t, err)

		_, err = storage.CreateUser(context.Background(), testUser("diego@example.com"))
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestStorage_ListUpcomingMeetups(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerID := factory.CreateUser(t, "organizer", "org@example.com", "hash")
	browserID := factory.CreateUser(t, "browser", "browser@example.com", "hash")

	day := time.Now().Add(72 * time.Hour).Truncate(24 * time.Hour)

	factory.CreateMeetup(t, "In range", "Moscow", day.Add(19*time.Hour), organizerID)
	factory.CreateMeetup(t, "Other day", "Moscow", day.Add(48*time.Hour), organizerID)
	// Собственные митапы в выдачу не попадают
	factory.CreateMeetup(t, "Own meetup", "Moscow", day.Add(20*time.Hour), browserID)

	t.Run("фильтр по дню", func(t *testing.T) {
		meetups, err := storage.ListUpcomingMeetups(context.Background(), browserID, &day, 10, 0)
		require.NoError(t, err)
		require.Len(t, meetups, 1)
		assert.Equal(t, "In range", meetups[0].Title)
	})

	t.Run("без фильтра отдаются все чужие будущие митапы", func(t *testing.T) {
		meetups, err := storage.ListUpcomingMeetups(context.Background(), browserID, nil, 10, 0)
		require.NoError(t, err)
		assert.Len(t, meetups, 2)
	})
}
