package domain

import "context"

// NotificationStore интерфейс долговременного хранилища уведомлений пользователя.
type NotificationStore interface {
	// Append добавляет новую запись и возвращает ее ID.
	// Время записи назначает хранилище.
	Append(ctx context.Context, userID string, rec NotificationRecord) (string, error)
	// List возвращает последние уведомления пользователя, новые первыми.
	List(ctx context.Context, userID string, limit int) ([]NotificationRecord, error)
	// MarkRead помечает уведомление как прочитанное.
	MarkRead(ctx context.Context, userID, id string) error
}
