package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// EventBus публикует события панели в общий exchange. Адаптер нужен,
// чтобы сервисный слой зависел от узкого интерфейса, а не от *amqp.Channel.
type EventBus struct {
	ch *amqp.Channel
}

// NewEventBus создает шину событий поверх открытого канала.
func NewEventBus(ch *amqp.Channel) *EventBus {
	return &EventBus{ch: ch}
}

// Publish сериализует сообщение в JSON и публикует его в exchange панели
// с указанным ключом маршрутизации.
func (b *EventBus) Publish(routingKey string, message any) error {
	const op = "rabbitmq.EventBus.Publish"

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = b.ch.Publish(
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
