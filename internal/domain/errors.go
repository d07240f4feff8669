package domain

import "errors"

var (
	// ErrInvalidRequest общая ошибка невалидного запроса.
	ErrInvalidRequest = errors.New("invalid notification request")
	// ErrEmptyUserID ошибка пустого получателя.
	ErrEmptyUserID = newInvalidError("user id is empty")
	// ErrEmptyTitle ошибка пустого заголовка.
	ErrEmptyTitle = newInvalidError("title is empty")
	// ErrEmptyBody ошибка пустого текста.
	ErrEmptyBody = newInvalidError("body is empty")
	// ErrEmptyType ошибка пустой категории.
	ErrEmptyType = newInvalidError("type is empty")
)

var (
	// ErrDelivery ошибка push-доставки. Наружу из Dispatch не выходит.
	ErrDelivery = errors.New("push delivery failed")
	// ErrStaleToken токен устройства просрочен или не зарегистрирован.
	ErrStaleToken = errors.New("push token is stale")
	// ErrPersistence ошибка записи в хранилище. Единственная ошибка Dispatch.
	ErrPersistence = errors.New("notification persistence failed")
	// ErrNotFound уведомление не найдено.
	ErrNotFound = errors.New("notification not found")
	// ErrQueueUnavailable брокер не принял сообщение.
	ErrQueueUnavailable = errors.New("notification queue unavailable")
)

// invalidError ошибка валидации, совместимая с errors.Is(err, ErrInvalidRequest).
type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }

func (e *invalidError) Is(target error) bool { return target == ErrInvalidRequest }

func newInvalidError(msg string) error {
	return &invalidError{msg: msg}
}
