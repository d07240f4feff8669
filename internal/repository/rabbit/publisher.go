package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CareNotifier/internal/domain"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

// Channel часть *amqp091.Channel, нужная издателю.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool,
		msg amqp091.Publishing) error
}

// Publisher публикует запросы на уведомления в RabbitMQ.
type Publisher struct {
	channel     Channel
	exchange    string
	routingKey  string
	contentType string
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(channel Channel, exchange, routingKey string) *Publisher {
	return &Publisher{
		channel:     channel,
		exchange:    exchange,
		routingKey:  routingKey,
		contentType: "application/json",
	}
}

// Publish ставит запрос в очередь и возвращает ID сообщения.
func (p *Publisher) Publish(ctx context.Context, req domain.NotificationRequest) (string, error) {
	op := "Publish:"
	if err := req.Validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	messageID := uuid.NewString()
	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp091.Publishing{
		ContentType:  p.contentType,
		DeliveryMode: amqp091.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", req.UserID).Msgf("%s failed to publish notification", op)
		return "", fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err)
	}

	zlog.Logger.Debug().Str("message_id", messageID).Str("user_id", req.UserID).Msgf("%s notification queued", op)
	return messageID, nil
}
