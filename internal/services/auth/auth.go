// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"

	"github.com/severyanov/meetapp-backend/internal/lib/jwt"
	"github.com/severyanov/meetapp-backend/internal/lib/password"
	"github.com/severyanov/meetapp-backend/internal/models"
	"github.com/severyanov/meetapp-backend/internal/storage/repository"
)

// Ошибки аутентификации и работы с профилем.
var (
	// ErrInvalidCredentials неверный email или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken пользователь с таким email уже существует.
	ErrEmailTaken = errors.New("email already taken")
	// ErrWrongOldPassword старый пароль не подошёл при смене пароля.
	ErrWrongOldPassword = errors.New("old password does not match")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по его ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// UpdateUser обновляет имя, email и хэш пароля пользователя.
	UpdateUser(ctx context.Context, user models.User) error
}

// AuthService отвечает за регистрацию, авторизацию, обновление профиля
// и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegister) (*models.User, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = id
	return &user, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpdateProfile обновляет имя и email пользователя; смена пароля
// требует корректного старого пароля.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.DummyUpdateProfile) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		if err := password.CompareHash(user.PasswordHash, req.OldPassword); err != nil {
			return nil, ErrWrongOldPassword
		}
		hashed, err := password.GetHash(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.users.UpdateUser(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// ValidateToken проверяет JWT и возвращает идентификатор пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (string, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
