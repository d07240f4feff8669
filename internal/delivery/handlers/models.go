package handlers

import "CareNotifier/internal/domain"

type DispatchRequest struct {
	UserID               string  `json:"userId" validate:"required,max=128"`
	Token                string  `json:"token" validate:"max=4096"`
	Title                string  `json:"title" validate:"required,max=200"`
	Body                 string  `json:"body" validate:"required,max=2000"`
	Type                 string  `json:"type" validate:"required,max=64"`
	RelatedAppointmentID *string `json:"relatedAppointmentId" validate:"omitempty,min=1,max=128"`
}

func (r DispatchRequest) toDomain() domain.NotificationRequest {
	return domain.NotificationRequest{
		UserID:               r.UserID,
		Token:                r.Token,
		Title:                r.Title,
		Body:                 r.Body,
		Type:                 domain.Type(r.Type),
		RelatedAppointmentID: r.RelatedAppointmentID,
	}
}

type DispatchResponse struct {
	ID string `json:"id"`
}

type EnqueueResponse struct {
	MessageID string `json:"messageId"`
}
