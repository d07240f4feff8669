package domain

import (
	"strings"
	"time"
)

// Type категория уведомления. Открытая строка: значение выбирает иконку и
// шаблон на стороне клиента и здесь не перечисляется.
type Type string

// String возвращает строковое представление категории.
func (t Type) String() string {
	return string(t)
}

// Категории, которые отправляет само приложение записи на приём.
const (
	TypeAppointment Type = "appointment"
	TypeReminder    Type = "reminder"
	TypeSystem      Type = "system"
)

// NotificationRequest входящий запрос на уведомление пользователя.
type NotificationRequest struct {
	UserID string `json:"userId"`
	// Token адрес push-доставки, пустой - push не отправляется.
	Token                string  `json:"token,omitempty"`
	Title                string  `json:"title"`
	Body                 string  `json:"body"`
	Type                 Type    `json:"type"`
	RelatedAppointmentID *string `json:"relatedAppointmentId,omitempty"`
}

// HasToken сообщает, нужно ли пытаться отправить push.
func (r NotificationRequest) HasToken() bool {
	return strings.TrimSpace(r.Token) != ""
}

// Validate проверяет обязательные поля запроса.
func (r NotificationRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return ErrEmptyUserID
	case strings.TrimSpace(r.Title) == "":
		return ErrEmptyTitle
	case strings.TrimSpace(r.Body) == "":
		return ErrEmptyBody
	case strings.TrimSpace(r.Type.String()) == "":
		return ErrEmptyType
	}
	return nil
}

// Record строит сохраняемую запись. Токен в запись не попадает.
func (r NotificationRequest) Record() NotificationRecord {
	rec := NotificationRecord{
		UserID: r.UserID,
		Title:  r.Title,
		Body:   r.Body,
		Type:   r.Type,
		IsRead: false,
	}
	if r.RelatedAppointmentID != nil && *r.RelatedAppointmentID != "" {
		id := *r.RelatedAppointmentID
		rec.RelatedAppointmentID = &id
	}
	return rec
}

// NotificationRecord сохраненное уведомление, видимое пользователю в приложении.
type NotificationRecord struct {
	ID                   string    `json:"id,omitempty"`
	UserID               string    `json:"userId"`
	Title                string    `json:"title"`
	Body                 string    `json:"body"`
	Type                 Type      `json:"type"`
	RelatedAppointmentID *string   `json:"relatedAppointmentId,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
	IsRead               bool      `json:"isRead"`
}

// HasRelatedAppointment сообщает, связана ли запись с записью на приём.
func (n NotificationRecord) HasRelatedAppointment() bool {
	return n.RelatedAppointmentID != nil
}

// AppointmentID возвращает ссылку на приём без разыменования nil.
func AppointmentID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
