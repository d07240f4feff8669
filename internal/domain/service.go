package domain

import "context"

// Dispatcher интерфейс отправки уведомлений.
type Dispatcher interface {
	// Dispatch пытается отправить push и всегда сохраняет запись.
	// Возвращает ID записи; ошибка только при сбое хранилища или невалидном запросе.
	Dispatch(ctx context.Context, req NotificationRequest) (string, error)
}

// Inbox интерфейс чтения уведомлений пользователя.
type Inbox interface {
	// List возвращает уведомления пользователя
	List(ctx context.Context, userID string, limit int) ([]NotificationRecord, error)
	// MarkRead помечает уведомление как прочитанное
	MarkRead(ctx context.Context, userID, id string) error
}
