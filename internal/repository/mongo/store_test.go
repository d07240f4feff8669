package mongo_test

import (
	"context"
	"testing"
	"time"

	"CareNotifier/internal/domain"
	mongostore "CareNotifier/internal/repository/mongo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// setOnInsert достает документ $setOnInsert из последней команды update.
func setOnInsert(mt *mtest.T) bson.Raw {
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)

	updates, err := evt.Command.Lookup("updates").Array().Values()
	require.NoError(mt, err)
	require.Len(mt, updates, 1)

	return updates[0].Document().Lookup("u", "$setOnInsert").Document()
}

func TestStore_Append(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("with_appointment", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))
		store := mongostore.NewStore(mt.Coll)

		rec := domain.NotificationRequest{
			UserID:               "u1",
			Token:                "tok-abc",
			Title:                "Appointment confirmed",
			Body:                 "Your visit is booked",
			Type:                 domain.TypeAppointment,
			RelatedAppointmentID: domain.AppointmentID("apt-42"),
		}.Record()

		id, err := store.Append(context.Background(), "u1", rec)
		require.NoError(mt, err)
		assert.NotEmpty(mt, id)

		doc := setOnInsert(mt)
		assert.Equal(mt, "u1", doc.Lookup("userId").StringValue())
		assert.Equal(mt, "apt-42", doc.Lookup("relatedAppointmentId").StringValue())
		assert.False(mt, doc.Lookup("isRead").Boolean())
		_, err = doc.LookupErr("timestamp")
		assert.Error(mt, err, "timestamp is set by $currentDate")
		_, err = doc.LookupErr("token")
		assert.Error(mt, err)
	})

	mt.Run("without_appointment", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		store := mongostore.NewStore(mt.Coll)

		rec := domain.NotificationRequest{UserID: "u1", Title: "Reminder", Body: "Visit tomorrow", Type: domain.TypeReminder}.Record()

		_, err := store.Append(context.Background(), "u1", rec)
		require.NoError(mt, err)

		_, err = setOnInsert(mt).LookupErr("relatedAppointmentId")
		assert.Error(mt, err)
	})

	mt.Run("server_error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "shutdown in progress",
		}))
		store := mongostore.NewStore(mt.Coll)

		id, err := store.Append(context.Background(), "u1", domain.NotificationRecord{Title: "t", Body: "b", Type: "x"})
		assert.Error(mt, err)
		assert.Empty(mt, id)
	})
}

func TestStore_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "rec-2"},
				{Key: "userId", Value: "u1"},
				{Key: "title", Value: "Reminder"},
				{Key: "body", Value: "Visit tomorrow"},
				{Key: "type", Value: "reminder"},
				{Key: "timestamp", Value: now},
				{Key: "isRead", Value: false},
			},
			bson.D{
				{Key: "_id", Value: "rec-1"},
				{Key: "userId", Value: "u1"},
				{Key: "title", Value: "Appointment confirmed"},
				{Key: "body", Value: "Your visit is booked"},
				{Key: "type", Value: "appointment"},
				{Key: "relatedAppointmentId", Value: "apt-42"},
				{Key: "timestamp", Value: now.Add(-time.Hour)},
				{Key: "isRead", Value: true},
			},
		))
		store := mongostore.NewStore(mt.Coll)

		records, err := store.List(context.Background(), "u1", 10)

		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, "rec-2", records[0].ID)
		assert.Nil(mt, records[0].RelatedAppointmentID)
		assert.Equal(mt, now, records[0].Timestamp.UTC())
		require.NotNil(mt, records[1].RelatedAppointmentID)
		assert.Equal(mt, "apt-42", *records[1].RelatedAppointmentID)
		assert.True(mt, records[1].IsRead)
	})

	mt.Run("empty", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		store := mongostore.NewStore(mt.Coll)

		records, err := store.List(context.Background(), "u1", 10)

		assert.NoError(mt, err)
		assert.NotNil(mt, records)
		assert.Empty(mt, records)
	})
}

func TestStore_MarkRead(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		store := mongostore.NewStore(mt.Coll)

		assert.NoError(mt, store.MarkRead(context.Background(), "u1", "rec-1"))
	})

	mt.Run("not_found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		store := mongostore.NewStore(mt.Coll)

		assert.ErrorIs(mt, store.MarkRead(context.Background(), "u1", "rec-9"), domain.ErrNotFound)
	})
}

func TestStore_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		store := mongostore.NewStore(mt.Coll)

		require.NoError(mt, store.EnsureIndexes(context.Background()))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "createIndexes", evt.CommandName)
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))
		store := mongostore.NewStore(mt.Coll)

		assert.Error(mt, store.EnsureIndexes(context.Background()))
	})
}
