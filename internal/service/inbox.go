package service

import (
	"context"
	"errors"
	"strings"

	"CareNotifier/internal/domain"
	"github.com/wb-go/wbf/zlog"
)

const (
	// DefaultListLimit размер страницы по умолчанию.
	DefaultListLimit = 50
	// MaxListLimit максимальный размер страницы.
	MaxListLimit = 100
)

// InboxService чтение и отметка уведомлений пользователя.
type InboxService struct {
	store domain.NotificationStore
}

// NewInboxService создает новый экземпляр InboxService.
func NewInboxService(store domain.NotificationStore) *InboxService {
	return &InboxService{store: store}
}

// List возвращает уведомления пользователя, новые первыми.
func (s *InboxService) List(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	op := "List:"
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrEmptyUserID
	}
	limit = ClampLimit(limit)

	records, err := s.store.List(ctx, userID, limit)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msgf("%s failed to list notifications", op)
		return nil, err
	}
	if records == nil {
		records = []domain.NotificationRecord{}
	}
	return records, nil
}

// MarkRead помечает уведомление как прочитанное.
func (s *InboxService) MarkRead(ctx context.Context, userID, id string) error {
	op := "MarkRead:"
	if strings.TrimSpace(userID) == "" {
		return domain.ErrEmptyUserID
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrNotFound
	}

	if err := s.store.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			zlog.Logger.Warn().Str("user_id", userID).Str("id", id).Msgf("%s notification not found", op)
			return err
		}
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msgf("%s failed to mark notification", op)
		return err
	}
	return nil
}

// ClampLimit приводит размер страницы к допустимому диапазону.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
