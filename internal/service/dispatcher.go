package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CareNotifier/internal/domain"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
)

const defaultPushTimeout = 10 * time.Second

// DispatcherOption функция настройки Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger задает логгер вместо глобального zlog.Logger.
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithPushTimeout задает таймаут push-шага. Ноль отключает собственный таймаут.
func WithPushTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.pushTimeout = timeout
	}
}

// Dispatcher отправляет push (если есть токен) и всегда сохраняет запись.
// Состояния между вызовами не хранит.
type Dispatcher struct {
	push        domain.PushSender
	store       domain.NotificationStore
	logger      zerolog.Logger
	pushTimeout time.Duration
}

// NewDispatcher создает новый экземпляр Dispatcher. push может быть nil,
// тогда уведомления только сохраняются.
func NewDispatcher(push domain.PushSender, store domain.NotificationStore, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		push:        push,
		store:       store,
		logger:      zlog.Logger,
		pushTimeout: defaultPushTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch отправляет уведомление пользователю.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.NotificationRequest) (string, error) {
	op := "Dispatch:"
	if err := req.Validate(); err != nil {
		d.logger.Warn().Err(err).Msgf("%s invalid notification request", op)
		return "", err
	}

	if req.HasToken() {
		d.deliver(ctx, req)
	} else {
		d.logger.Debug().Str("user_id", req.UserID).Msgf("%s no push token, push skipped", op)
	}

	id, err := d.store.Append(ctx, req.UserID, req.Record())
	if err != nil {
		d.logger.Error().Err(err).
			Str("user_id", req.UserID).
			Str("type", req.Type.String()).
			Msgf("%s failed to persist notification", op)
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	d.logger.Debug().Str("user_id", req.UserID).Str("id", id).Msgf("%s notification persisted", op)
	return id, nil
}

// deliver делает одну попытку push. Ошибка только логируется.
func (d *Dispatcher) deliver(ctx context.Context, req domain.NotificationRequest) {
	op := "Dispatch:"
	if d.push == nil {
		d.logger.Debug().Str("user_id", req.UserID).Msgf("%s push transport is not configured", op)
		return
	}

	pushCtx := ctx
	if d.pushTimeout > 0 {
		var cancel context.CancelFunc
		pushCtx, cancel = context.WithTimeout(ctx, d.pushTimeout)
		defer cancel()
	}

	err := d.push.Send(pushCtx, req.Token, req.Title, req.Body)
	if err == nil {
		return
	}

	event := d.logger.Warn().Err(err).
		Str("user_id", req.UserID).
		Str("type", req.Type.String()).
		Bool("stale_token", errors.Is(err, domain.ErrStaleToken))
	event.Msgf("%s push delivery failed, notification is still persisted", op)
}
