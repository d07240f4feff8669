package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"CareNotifier/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
)

// Decision что сделать с сообщением после обработки.
type Decision int

const (
	// Ack сообщение обработано.
	Ack Decision = iota
	// Requeue вернуть сообщение в очередь (хранилище недоступно).
	Requeue
	// Reject отбросить сообщение (в DLQ, если она настроена).
	Reject
)

// String возвращает строковое представление решения.
func (d Decision) String() string {
	switch d {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Channel часть *amqp091.Channel, нужная потребителю.
type Channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool,
		args amqp091.Table) (<-chan amqp091.Delivery, error)
}

// ConsumerOption функция настройки Consumer.
type ConsumerOption func(*Consumer)

// WithConsumerLogger задает логгер вместо глобального zlog.Logger.
func WithConsumerLogger(logger zerolog.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// Consumer читает запросы на уведомления из очереди и передает их диспетчеру.
// Тело сообщения содержит push-токен и в лог не пишется.
type Consumer struct {
	dispatcher domain.Dispatcher
	channel    Channel
	tag        string
	logger     zerolog.Logger
}

// NewConsumer создает новый экземпляр Consumer.
func NewConsumer(dispatcher domain.Dispatcher, channel Channel, tag string, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		dispatcher: dispatcher,
		channel:    channel,
		tag:        tag,
		logger:     zlog.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start запускает workerNum обработчиков и блокируется до отмены ctx
// или закрытия канала доставки.
func (c *Consumer) Start(ctx context.Context, queueName string, workerNum, prefetchCount int) error {
	if workerNum <= 0 {
		workerNum = 1
	}
	if prefetchCount <= 0 {
		prefetchCount = 1
	}
	if err := c.channel.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := c.channel.Consume(queueName, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queueName, err)
	}

	c.logger.Info().Str("queue", queueName).Int("workers", workerNum).Msg("consumer started")

	var wg sync.WaitGroup
	for i := 0; i < workerNum; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						c.logger.Warn().Int("worker", worker).Msg("delivery channel closed")
						return
					}
					c.Process(ctx, d)
				}
			}
		}(i)
	}
	wg.Wait()

	c.logger.Info().Str("queue", queueName).Msg("consumer stopped")
	return nil
}

// Process обрабатывает одно сообщение и подтверждает его согласно решению.
func (c *Consumer) Process(ctx context.Context, d amqp091.Delivery) Decision {
	decision := c.Handle(ctx, d.Body)

	var err error
	switch decision {
	case Ack:
		err = d.Ack(false)
	case Requeue:
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("decision", decision.String()).Msg("failed to acknowledge delivery")
	}
	return decision
}

// Handle разбирает тело сообщения и вызывает диспетчер.
func (c *Consumer) Handle(ctx context.Context, body []byte) Decision {
	var req domain.NotificationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.logger.Error().Err(err).Int("size", len(body)).Msg("failed to unmarshal body")
		return Reject
	}
	c.logger.Debug().Str("user_id", req.UserID).Str("type", req.Type.String()).Msg("start dispatch")

	id, err := c.dispatcher.Dispatch(ctx, req)
	switch {
	case err == nil:
		c.logger.Debug().Str("id", id).Str("user_id", req.UserID).Msg("notification dispatched")
		return Ack
	case errors.Is(err, domain.ErrInvalidRequest):
		c.logger.Warn().Err(err).Msg("invalid notification request, rejected")
		return Reject
	default:
		c.logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to dispatch, requeue")
		return Requeue
	}
}
