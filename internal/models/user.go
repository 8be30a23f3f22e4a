// Package models содержит доменные структуры приложения: пользователей,
// митапы, подписки и загруженные файлы, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    `json:"id"`    // Уникальный идентификатор пользователя (uuid)
	Name         string    `json:"name"`  // Имя пользователя
	Email        string    `json:"email"` // Электронная почта (уникальная)
	PasswordHash string    `json:"-"`     // Хэш пароля, наружу не отдаётся
	CreatedAt    time.Time `json:"created_at"`
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyUpdateProfile используется для приёма данных обновления профиля.
// Смена пароля требует указания старого пароля.
type DummyUpdateProfile struct {
	Name        string `json:"name,omitempty" validate:"omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	OldPassword string `json:"old_password,omitempty" validate:"omitempty"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
}
