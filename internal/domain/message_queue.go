package domain

import "context"

// NotificationQueue интерфейс асинхронной постановки уведомлений в очередь.
type NotificationQueue interface {
	// Publish ставит запрос в очередь и возвращает ID сообщения.
	Publish(ctx context.Context, req NotificationRequest) (string, error)
}
