package mongo

import (
	"context"
	"time"

	"CareNotifier/internal/domain"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// document представление уведомления в коллекции.
type document struct {
	ID                   string    `bson:"_id,omitempty"`
	UserID               string    `bson:"userId"`
	Title                string    `bson:"title"`
	Body                 string    `bson:"body"`
	Type                 string    `bson:"type"`
	RelatedAppointmentID *string   `bson:"relatedAppointmentId,omitempty"`
	Timestamp            time.Time `bson:"timestamp,omitempty"`
	IsRead               bool      `bson:"isRead"`
}

func (d document) record() domain.NotificationRecord {
	return domain.NotificationRecord{
		ID:                   d.ID,
		UserID:               d.UserID,
		Title:                d.Title,
		Body:                 d.Body,
		Type:                 domain.Type(d.Type),
		RelatedAppointmentID: d.RelatedAppointmentID,
		Timestamp:            d.Timestamp,
		IsRead:               d.IsRead,
	}
}

// Store хранит уведомления в коллекции MongoDB.
type Store struct {
	coll *mongo.Collection
}

// NewStore создает новый экземпляр Store.
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Append вставляет документ через upsert, чтобы timestamp выставил сервер ($currentDate).
func (s *Store) Append(ctx context.Context, userID string, rec domain.NotificationRecord) (string, error) {
	id := uuid.NewString()
	doc := document{
		UserID:               userID,
		Title:                rec.Title,
		Body:                 rec.Body,
		Type:                 rec.Type.String(),
		RelatedAppointmentID: rec.RelatedAppointmentID,
		IsRead:               false,
	}
	update := bson.M{
		"$setOnInsert": doc,
		"$currentDate": bson.M{"timestamp": true},
	}

	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("Error inserting notification document")
		return "", err
	}
	zlog.Logger.Debug().Msgf("Created notification id: %s user:%s, type:%s", id, userID, rec.Type)
	return id, nil
}

// List возвращает последние уведомления пользователя.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("Error finding notifications")
		return nil, err
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("Error decoding notifications")
		return nil, err
	}

	result := make([]domain.NotificationRecord, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.record())
	}
	return result, nil
}

// MarkRead помечает уведомление пользователя как прочитанное.
func (s *Store) MarkRead(ctx context.Context, userID, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("Error marking notification read")
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes создает индекс выборки ленты пользователя.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("user_timestamp"),
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Error creating notification indexes")
		return err
	}
	return nil
}
