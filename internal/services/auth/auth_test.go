package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/severyanov/meetapp-backend/internal/lib/jwt"
	"github.com/severyanov/meetapp-backend/internal/lib/password"
	"github.com/severyanov/meetapp-backend/internal/models"
	"github.com/severyanov/meetapp-backend/internal/storage/repository"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) UpdateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

const testUserID = "3f2504e0-5555-41d3-9a0c-0305e82c3301"

func newTestMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("успешная регистрация хэширует пароль", func(t *testing.T) {
		users := new(UsersMock)
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "diego@example.com" &&
				u.PasswordHash != "" &&
				u.PasswordHash != "secret123" &&
				password.CompareHash(u.PasswordHash, "secret123") == nil
		})).Return(testUserID, nil).Once()

		service := NewAuthService(users, newTestMaker())

		user, err := service.Register(context.Background(), models.DummyRegister{
			Name:     "Diego",
			Email:    "diego@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, testUserID, user.ID)
		users.AssertExpectations(t)
	})

	t.Run("email уже занят", func(t *testing.T) {
		users := new(UsersMock)
		users.On("CreateUser", mock.Anything, mock.Anything).
			Return("", repository.ErrEmailTaken).Once()

		service := NewAuthService(users, newTestMaker())

		_, err := service.Register(context.Background(), models.DummyRegister{
			Name:     "Diego",
			Email:    "diego@example.com",
			Password: "secret123",
		})
		require.ErrorIs(t, err, ErrEmailTaken)
		users.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)
	stored := &models.User{ID: testUserID, Name: "Diego", Email: "diego@example.com", PasswordHash: hash}

	t.Run("успешный вход возвращает валидный токен", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "diego@example.com").Return(stored, nil).Once()

		service := NewAuthService(users, newTestMaker())

		user, token, err := service.Login(context.Background(), "diego@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, testUserID, user.ID)
		require.NotEmpty(t, token)

		userID, err := service.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, testUserID, userID)
		users.AssertExpectations(t)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "diego@example.com").Return(stored, nil).Once()

		service := NewAuthService(users, newTestMaker())

		_, _, err := service.Login(context.Background(), "diego@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "nobody@example.com").
			Return(nil, repository.ErrNotFound).Once()

		service := NewAuthService(users, newTestMaker())

		_, _, err := service.Login(context.Background(), "nobody@example.com", "secret123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	t.Run("смена пароля требует верный старый пароль", func(t *testing.T) {
		hash, err := password.GetHash("oldpassword")
		require.NoError(t, err)
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, testUserID).
			Return(&models.User{ID: testUserID, PasswordHash: hash}, nil).Once()

		service := NewAuthService(users, newTestMaker())

		_, err = service.UpdateProfile(context.Background(), testUserID, models.DummyUpdateProfile{
			Password:    "newpassword",
			OldPassword: "not-the-old-one",
		})
		require.ErrorIs(t, err, ErrWrongOldPassword)
		users.AssertExpectations(t)
	})

	t.Run("обновление имени и email без смены пароля", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, testUserID).
			Return(&models.User{ID: testUserID, Name: "Diego", Email: "diego@example.com"}, nil).Once()
		users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Name == "Diego Fernandes" && u.Email == "new@example.com"
		})).Return(nil).Once()

		service := NewAuthService(users, newTestMaker())

		user, err := service.UpdateProfile(context.Background(), testUserID, models.DummyUpdateProfile{
			Name:  "Diego Fernandes",
			Email: "new@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "Diego Fernandes", user.Name)
		users.AssertExpectations(t)
	})

	t.Run("новый email уже занят", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUser", mock.Anything, testUserID).
			Return(&models.User{ID: testUserID}, nil).Once()
		users.On("UpdateUser", mock.Anything, mock.Anything).
			Return(repository.ErrEmailTaken).Once()

		service := NewAuthService(users, newTestMaker())

		_, err := service.UpdateProfile(context.Background(), testUserID, models.DummyUpdateProfile{
			Email: "taken@example.com",
		})
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}
