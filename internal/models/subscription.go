package models

import "time"

// Subscription связывает пользователя с митапом, который он собирается посетить.
// Записи создаются сервисом подписок и никогда не обновляются.
type Subscription struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	MeetupID  int       `json:"meetup_id"`
	Meetup    *Meetup   `json:"meetup,omitempty"` // Заполняется при выборке с join
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionNotification сообщение для очереди уведомлений:
// данные митапа и подписавшегося пользователя.
type SubscriptionNotification struct {
	Meetup Meetup `json:"meetup"`
	User   User   `json:"user"`
}
