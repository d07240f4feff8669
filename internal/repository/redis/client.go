package redis

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Client обертка над go-redis, реализующая domain.RedisRepository.
type Client struct {
	rdb *goredis.Client
}

// New создает клиента Redis.
func New(addr, password string, db int) *Client {
	return &Client{rdb: goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// NewFromClient оборачивает готового клиента go-redis.
func NewFromClient(rdb *goredis.Client) *Client {
	return &Client{rdb: rdb}
}

// Get получает значение по ключу. При отсутствии ключа возвращает redis.Nil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// SetWithExpiration устанавливает значение с временем жизни.
func (c *Client) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Delete удаляет ключ.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Incr атомарно увеличивает счетчик. Отсутствующий ключ считается нулем.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// Ping проверяет соединение.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close закрывает соединение.
func (c *Client) Close() error {
	return c.rdb.Close()
}
