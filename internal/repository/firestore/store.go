package firestore

import (
	"context"
	"errors"
	"time"

	"CareNotifier/internal/domain"
	"cloud.google.com/go/firestore"
	"github.com/wb-go/wbf/zlog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection         = "users"
	notificationsCollection = "notifications"
)

// Поля документа уведомления.
const (
	FieldTitle                = "title"
	FieldBody                 = "body"
	FieldType                 = "type"
	FieldRelatedAppointmentID = "relatedAppointmentId"
	FieldTimestamp            = "timestamp"
	FieldIsRead               = "isRead"
)

// Store хранит уведомления в users/{uid}/notifications.
type Store struct {
	client *firestore.Client
}

// NewStore создает новый экземпляр Store.
func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) notifications(userID string) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(notificationsCollection)
}

// Append добавляет документ; timestamp проставляет сервер Firestore.
func (s *Store) Append(ctx context.Context, userID string, rec domain.NotificationRecord) (string, error) {
	ref, _, err := s.notifications(userID).Add(ctx, ToDocument(rec))
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("Error adding notification document")
		return "", err
	}
	zlog.Logger.Debug().Msgf("Created notification id: %s user:%s, type:%s", ref.ID, userID, rec.Type)
	return ref.ID, nil
}

// List возвращает последние уведомления пользователя.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	query := s.notifications(userID).OrderBy(FieldTimestamp, firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]domain.NotificationRecord, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("Error iterating notifications")
			return nil, err
		}
		result = append(result, FromDocument(doc.Ref.ID, userID, doc.Data()))
	}
	return result, nil
}

// MarkRead помечает документ как прочитанный.
func (s *Store) MarkRead(ctx context.Context, userID, id string) error {
	_, err := s.notifications(userID).Doc(id).Update(ctx, []firestore.Update{
		{Path: FieldIsRead, Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound
		}
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("Error marking notification read")
		return err
	}
	return nil
}

// ToDocument строит документ записи. relatedAppointmentId пишется только если задан.
func ToDocument(rec domain.NotificationRecord) map[string]interface{} {
	doc := map[string]interface{}{
		FieldTitle:     rec.Title,
		FieldBody:      rec.Body,
		FieldType:      rec.Type.String(),
		FieldTimestamp: firestore.ServerTimestamp,
		FieldIsRead:    false,
	}
	if rec.RelatedAppointmentID != nil {
		doc[FieldRelatedAppointmentID] = *rec.RelatedAppointmentID
	}
	return doc
}

// FromDocument читает запись из данных документа.
func FromDocument(id, userID string, data map[string]interface{}) domain.NotificationRecord {
	rec := domain.NotificationRecord{
		ID:     id,
		UserID: userID,
	}
	rec.Title, _ = data[FieldTitle].(string)
	rec.Body, _ = data[FieldBody].(string)
	if t, ok := data[FieldType].(string); ok {
		rec.Type = domain.Type(t)
	}
	if related, ok := data[FieldRelatedAppointmentID].(string); ok {
		rec.RelatedAppointmentID = &related
	}
	if ts, ok := data[FieldTimestamp].(time.Time); ok {
		rec.Timestamp = ts
	}
	rec.IsRead, _ = data[FieldIsRead].(bool)
	return rec
}
