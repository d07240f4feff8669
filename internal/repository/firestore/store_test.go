package firestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"CareNotifier/internal/domain"
	fsstore "CareNotifier/internal/repository/firestore"
	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDocument_WithAppointment(t *testing.T) {
	rec := domain.NotificationRequest{
		UserID:               "u1",
		Token:                "tok-abc",
		Title:                "Appointment confirmed",
		Body:                 "Your visit is booked",
		Type:                 domain.TypeAppointment,
		RelatedAppointmentID: domain.AppointmentID("apt-42"),
	}.Record()

	doc := fsstore.ToDocument(rec)

	assert.Equal(t, "Appointment confirmed", doc[fsstore.FieldTitle])
	assert.Equal(t, "Your visit is booked", doc[fsstore.FieldBody])
	assert.Equal(t, "appointment", doc[fsstore.FieldType])
	assert.Equal(t, "apt-42", doc[fsstore.FieldRelatedAppointmentID])
	assert.Equal(t, false, doc[fsstore.FieldIsRead])
	assert.Equal(t, firestore.ServerTimestamp, doc[fsstore.FieldTimestamp])
	assert.NotContains(t, doc, "token")
	assert.Len(t, doc, 6)
}

func TestToDocument_WithoutAppointment(t *testing.T) {
	rec := domain.NotificationRequest{UserID: "u1", Title: "Reminder", Body: "Visit tomorrow", Type: domain.TypeReminder}.Record()

	doc := fsstore.ToDocument(rec)

	assert.NotContains(t, doc, fsstore.FieldRelatedAppointmentID)
	assert.Len(t, doc, 5)
}

func TestFromDocument(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rec := fsstore.FromDocument("doc-1", "u1", map[string]interface{}{
		fsstore.FieldTitle:                "Appointment confirmed",
		fsstore.FieldBody:                 "Your visit is booked",
		fsstore.FieldType:                 "appointment",
		fsstore.FieldRelatedAppointmentID: "apt-42",
		fsstore.FieldTimestamp:            ts,
		fsstore.FieldIsRead:               true,
	})

	assert.Equal(t, "doc-1", rec.ID)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, domain.TypeAppointment, rec.Type)
	require.NotNil(t, rec.RelatedAppointmentID)
	assert.Equal(t, "apt-42", *rec.RelatedAppointmentID)
	assert.Equal(t, ts, rec.Timestamp)
	assert.True(t, rec.IsRead)
}

func TestFromDocument_SparseFields(t *testing.T) {
	rec := fsstore.FromDocument("doc-2", "u1", map[string]interface{}{
		fsstore.FieldTitle: "Reminder",
		fsstore.FieldBody:  "Visit tomorrow",
		fsstore.FieldType:  "reminder",
	})

	assert.Nil(t, rec.RelatedAppointmentID)
	assert.False(t, rec.IsRead)
	assert.True(t, rec.Timestamp.IsZero())
}

// TestStore_Emulator работает только с запущенным эмулятором Firestore.
func TestStore_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}
	ctx := context.Background()

	client, err := firestore.NewClient(ctx, "care-notifier-test")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	store := fsstore.NewStore(client)
	userID := "user-" + uuid.NewString()

	first, err := store.Append(ctx, userID, domain.NotificationRequest{
		UserID: userID, Title: "Reminder", Body: "Visit tomorrow", Type: domain.TypeReminder,
	}.Record())
	require.NoError(t, err)

	second, err := store.Append(ctx, userID, domain.NotificationRequest{
		UserID: userID, Title: "Confirmed", Body: "Booked", Type: domain.TypeAppointment,
		RelatedAppointmentID: domain.AppointmentID("apt-42"),
	}.Record())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	records, err := store.List(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.False(t, rec.IsRead)
		assert.False(t, rec.Timestamp.IsZero())
	}

	require.NoError(t, store.MarkRead(ctx, userID, first))
	assert.ErrorIs(t, store.MarkRead(ctx, userID, "missing"), domain.ErrNotFound)
}
