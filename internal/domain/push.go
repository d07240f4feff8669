package domain

import "context"

// PushSender интерфейс транспорта push-доставки.
type PushSender interface {
	// Send отправляет одно push-уведомление на устройство с указанным токеном.
	// Повторных попыток не делает.
	Send(ctx context.Context, token, title, body string) error
}
