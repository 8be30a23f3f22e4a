package models

import "time"

// Meetup представляет митап с датой проведения, местом и организатором.
// Поле Past вычисляется при чтении из хранилища: дата митапа уже прошла.
type Meetup struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Past        bool      `json:"past"`
	BannerID    *int      `json:"banner_id,omitempty"` // Идентификатор файла-баннера, может отсутствовать
	OrganizerID string    `json:"organizer_id"`
	Organizer   *User     `json:"organizer,omitempty"` // Заполняется при выборке с join
	Banner      *File     `json:"banner,omitempty"`    // Заполняется при выборке с join
	CreatedAt   time.Time `json:"created_at"`
}

// DummyMeetup используется для приёма данных митапа из JSON-запроса.
// Дата приходит строкой в формате RFC3339 и парсится вручную.
type DummyMeetup struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Date        string `json:"date" validate:"required"`
	BannerID    *int   `json:"banner_id,omitempty" validate:"omitempty,gt=0"`
}

// File представляет загруженный файл (баннер митапа).
type File struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"` // Оригинальное имя файла
	Path      string    `json:"path"` // Имя файла на диске
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
