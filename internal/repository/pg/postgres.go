package pg

import (
	"context"
	"database/sql"
	"time"

	"CareNotifier/internal/domain"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// PostgresRepo структура для работы с PostgreSQL.
type PostgresRepo struct {
	DB *dbpg.DB
}

// NewPostgresRepo создает новый экземпляр PostgresRepo.
func NewPostgresRepo(db *dbpg.DB) *PostgresRepo {
	return &PostgresRepo{
		DB: db,
	}
}

// Append добавляет уведомление пользователя. id и created_at назначает база.
func (p *PostgresRepo) Append(ctx context.Context, userID string, rec domain.NotificationRecord) (string, error) {
	sqlQuery := `INSERT INTO notifications (user_id, title, body, type, related_appointment_id, is_read)
 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`

	var (
		id        string
		createdAt time.Time
	)
	if err := p.DB.QueryRowContext(ctx, sqlQuery,
		userID, rec.Title, rec.Body, rec.Type, nullString(rec.RelatedAppointmentID), false,
	).Scan(&id, &createdAt); err != nil {
		logQueryError(err, "Error inserting notification")
		return "", err
	}

	zlog.Logger.Debug().Msgf(
		"Created notification id: %s user:%s, type:%s, created_at: %v",
		id,
		userID,
		rec.Type,
		createdAt,
	)
	return id, nil
}

// List получает последние уведомления пользователя.
func (p *PostgresRepo) List(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	start := time.Now()
	sqlQuery := buildListSQL(limit)

	rows, err := p.DB.QueryContext(ctx, sqlQuery, userID)
	if err != nil {
		logQueryError(err, "Error exec list notifications sql")
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	result := make([]domain.NotificationRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("Error scan list notifications sql")
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		logQueryError(err, "Error iterate list notifications")
		return nil, err
	}

	zlog.Logger.Debug().Msgf("List notifications user: %s count: %d : TIME: %s", userID, len(result), time.Since(start))
	return result, nil
}

// MarkRead помечает уведомление пользователя как прочитанное.
func (p *PostgresRepo) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	sqlQuery := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`

	r, err := p.DB.ExecContext(ctx, sqlQuery, id, userID)
	if err != nil {
		logQueryError(err, "Error exec mark read notification")
		return err
	}
	rows, _ := r.RowsAffected()
	if rows == 0 {
		zlog.Logger.Warn().Msgf("Mark read notification id: %v No rows affected", id)
		return domain.ErrNotFound
	}
	return nil
}
