// Package repository реализует хранилище данных на основе PostgreSQL
// для пользователей, митапов, подписок и загруженных файлов. Предоставляет
// методы создания, чтения, обновления и удаления записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища, на которые опирается бизнес-логика.
var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken пользователь с таким email уже существует.
	ErrEmailTaken = errors.New("email already taken")
	// ErrSubscriptionExists подписка на этот митап уже есть,
	// UNIQUE (user_id, meetup_id) в схеме.
	ErrSubscriptionExists = errors.New("subscription already exists")
	// ErrScheduleTaken у пользователя уже есть подписка на митап
	// с той же датой и временем.
	ErrScheduleTaken = errors.New("schedule slot already taken")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с доменными записями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'subscriptions'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table subscriptions missing or query error: %w", err)
	}
	return nil
}
