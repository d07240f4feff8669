package worker

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Declarer часть *amqp091.Channel для объявления топологии.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
}

// Topology описывает exchange, рабочую очередь и очередь отброшенных сообщений.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
	DeadLetter string
}

// Declare объявляет durable exchange и очереди. Отклоненные без requeue
// сообщения уходят через default exchange в DeadLetter, если он задан.
func (t Topology) Declare(ch Declarer) error {
	if err := ch.ExchangeDeclare(t.Exchange, amqp091.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", t.Exchange, err)
	}

	var args amqp091.Table
	if t.DeadLetter != "" {
		if _, err := ch.QueueDeclare(t.DeadLetter, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead letter queue %s: %w", t.DeadLetter, err)
		}
		args = amqp091.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": t.DeadLetter,
		}
	}

	if _, err := ch.QueueDeclare(t.Queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", t.Queue, err)
	}
	if err := ch.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", t.Queue, err)
	}
	return nil
}
