// Package rabbitmq содержит подключение к RabbitMQ, объявление очередей
// уведомлений, публикацию и потребление сообщений.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Имя exchange и очередь уведомлений о новых подписках.
const (
	NotificationsExchange = "notifications"
	SubscriptionQueue     = "notifications.subscription"
	SubscriptionKey       = "subscription.created"
)

// Connect подключается к RabbitMQ с ретраями.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал, объявляет exchange уведомлений
// и привязывает к нему очередь подписок.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		SubscriptionQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, SubscriptionQueue, err)
	}

	err = ch.QueueBind(
		SubscriptionQueue,
		SubscriptionKey,
		NotificationsExchange,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, SubscriptionQueue, err)
	}

	return ch, nil
}
