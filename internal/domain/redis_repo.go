package domain

import (
	"context"
	"time"
)

// RedisRepository интерфейс для работы с Redis.
type RedisRepository interface {
	// Get получает значение по ключу
	Get(ctx context.Context, key string) (string, error)
	// SetWithExpiration устанавливает значение с временем жизни.
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Delete удаляет ключ.
	Delete(ctx context.Context, key string) error
	// Incr атомарно увеличивает счетчик и возвращает новое значение.
	Incr(ctx context.Context, key string) (int64, error)
}
