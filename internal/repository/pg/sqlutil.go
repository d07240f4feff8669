package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"CareNotifier/internal/domain"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/zlog"
)

const selectColumns = `id, user_id, title, body, type, related_appointment_id, is_read, created_at`

// buildListSQL строит запрос выборки уведомлений пользователя.
// Если limit равен 0, он не включается в запрос.
func buildListSQL(limit int) string {
	query := `SELECT ` + selectColumns + `
	FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord читает строку в запись. NULL в related_appointment_id дает
// отсутствующее поле, а не пустую строку.
func scanRecord(row rowScanner) (domain.NotificationRecord, error) {
	var (
		rec     domain.NotificationRecord
		related sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Body, &rec.Type,
		&related, &rec.IsRead, &rec.Timestamp); err != nil {
		return rec, err
	}
	if related.Valid {
		v := related.String
		rec.RelatedAppointmentID = &v
	}
	return rec, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// logQueryError логирует ошибку запроса, добавляя SQLSTATE для ошибок драйвера.
func logQueryError(err error, msg string) {
	event := zlog.Logger.Error().Err(err)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		event = event.Str("pg_code", string(pqErr.Code)).Str("pg_constraint", pqErr.Constraint)
	}
	event.Msg(msg)
}
