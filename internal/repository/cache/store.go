package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"CareNotifier/internal/domain"
	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/zlog"
)

const (
	redisKeyPrefix      = "notifications:"
	generationKeyPrefix = "notifications-gen:"
)

// entry закэшированная страница вместе с поколением, из которого она прочитана.
type entry struct {
	Generation int64                       `json:"generation"`
	Records    []domain.NotificationRecord `json:"records"`
}

// Store кэширует первую страницу уведомлений пользователя в Redis поверх
// любого domain.NotificationStore.
//
// Каждая запись увеличивает счетчик поколения пользователя. Страница в кэше
// действительна только для того поколения, из которого была прочитана.
type Store struct {
	inner      domain.NotificationStore
	redis      domain.RedisRepository
	pageSize   int
	expiration time.Duration
}

// NewStore создает новый экземпляр Store. Кэшируется только страница размера pageSize.
func NewStore(inner domain.NotificationStore, redis domain.RedisRepository, pageSize int, expiration time.Duration) *Store {
	return &Store{inner: inner, redis: redis, pageSize: pageSize, expiration: expiration}
}

// Key возвращает ключ кэша для пользователя.
func Key(userID string) string {
	return redisKeyPrefix + userID
}

// GenerationKey возвращает ключ счетчика поколения пользователя.
func GenerationKey(userID string) string {
	return generationKeyPrefix + userID
}

// Append сохраняет запись и сбрасывает кэш. Ошибка сброса не делает запись неуспешной.
func (s *Store) Append(ctx context.Context, userID string, rec domain.NotificationRecord) (string, error) {
	id, err := s.inner.Append(ctx, userID, rec)
	if err != nil {
		return "", err
	}
	s.invalidate(ctx, userID)
	return id, nil
}

// List читает страницу из кэша, при промахе из хранилища.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	op := "CacheList:"
	if limit != s.pageSize {
		return s.inner.List(ctx, userID, limit)
	}

	gen, err := s.generation(ctx, userID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msgf("%s failed to read cache generation", op)
		return s.inner.List(ctx, userID, limit)
	}

	data, err := s.redis.Get(ctx, Key(userID))
	switch {
	case err == nil:
		var cached entry
		if err := json.Unmarshal([]byte(data), &cached); err != nil {
			zlog.Logger.Warn().Str("user_id", userID).Msgf("%s broken cache entry, reading store", op)
			break
		}
		if cached.Generation == gen {
			zlog.Logger.Debug().Str("user_id", userID).Msgf("%s cache hit", op)
			return cached.Records, nil
		}
		zlog.Logger.Debug().Str("user_id", userID).
			Int64("cached", cached.Generation).Int64("current", gen).
			Msgf("%s stale cache entry", op)
	case errors.Is(err, redis.Nil):
		zlog.Logger.Debug().Str("user_id", userID).Msgf("%s cache miss", op)
	default:
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msgf("%s failed to read cache", op)
	}

	records, err := s.inner.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, userID, gen, records)
	return records, nil
}

// MarkRead обновляет запись и сбрасывает кэш.
func (s *Store) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.inner.MarkRead(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// generation возвращает текущее поколение пользователя. Нет ключа - ноль.
func (s *Store) generation(ctx context.Context, userID string) (int64, error) {
	raw, err := s.redis.Get(ctx, GenerationKey(userID))
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Store) invalidate(ctx context.Context, userID string) {
	if _, err := s.redis.Incr(ctx, GenerationKey(userID)); err != nil {
		zlog.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to bump notifications cache generation")
	}
	if err := s.redis.Delete(ctx, Key(userID)); err != nil {
		zlog.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate notifications cache")
	}
}

// fill кладет страницу в кэш, если с момента чтения не было записей.
func (s *Store) fill(ctx context.Context, userID string, gen int64, records []domain.NotificationRecord) {
	current, err := s.generation(ctx, userID)
	if err != nil || current != gen {
		zlog.Logger.Debug().Str("user_id", userID).Msg("notifications changed while reading, cache fill skipped")
		return
	}

	data, err := json.Marshal(entry{Generation: gen, Records: records})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to marshal notifications")
		return
	}
	if err := s.redis.SetWithExpiration(ctx, Key(userID), data, s.expiration); err != nil {
		zlog.Logger.Warn().Err(err).Str("user_id", userID).Msg("failed to cache notifications")
	}
}
