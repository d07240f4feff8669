package fcm

import (
	"context"
	"errors"
	"fmt"

	"CareNotifier/internal/domain"
	"firebase.google.com/go/v4/messaging"
	"github.com/wb-go/wbf/zlog"
)

// MessagingClient часть *messaging.Client, которой пользуется отправщик.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Options параметры оформления push-сообщения.
type Options struct {
	AndroidChannelID string
	Sound            string
}

// Sender отправляет push через Firebase Cloud Messaging.
type Sender struct {
	client MessagingClient
	opts   Options
}

// NewSender создает новый экземпляр Sender.
func NewSender(client MessagingClient, opts Options) *Sender {
	if opts.Sound == "" {
		opts.Sound = "default"
	}
	return &Sender{client: client, opts: opts}
}

// Send отправляет одно сообщение на токен устройства.
func (s *Sender) Send(ctx context.Context, token, title, body string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", domain.ErrDelivery)
	}

	response, err := s.client.Send(ctx, s.message(token, title, body))
	if err != nil {
		if isStaleToken(err) {
			return fmt.Errorf("%w: %w: %w", domain.ErrDelivery, domain.ErrStaleToken, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}

	zlog.Logger.Debug().Str("message_id", response).Msg("FCM notification sent")
	return nil
}

func (s *Sender) message(token, title, body string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     s.opts.Sound,
				ChannelID: s.opts.AndroidChannelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: s.opts.Sound,
				},
			},
		},
	}
}

// isStaleToken токен больше не принимается FCM, повтор с ним бесполезен.
func isStaleToken(err error) bool {
	if errors.Is(err, domain.ErrStaleToken) {
		return true
	}
	return messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err)
}
