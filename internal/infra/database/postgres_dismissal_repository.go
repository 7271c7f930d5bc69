package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"deadline_notifier/internal/domain/notification"
)

type PostgresDismissalRepository struct {
	db *sql.DB
}

func NewPostgresDismissalRepository(db *sql.DB) *PostgresDismissalRepository {
	return &PostgresDismissalRepository{db: db}
}

func (r *PostgresDismissalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Dismissal, error) {
	query := `SELECT user_id, notification_key, dismissed_until, created_at
               FROM dismissed_notifications WHERE user_id = $1 ORDER BY created_at, notification_key`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing dismissals: %w", err)
	}
	defer rows.Close()

	dismissals := make([]*notification.Dismissal, 0)
	for rows.Next() {
		var (
			d     notification.Dismissal
			until sql.NullTime
		)
		if err := rows.Scan(&d.UserID, &d.Key, &until, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning dismissal: %w", err)
		}
		d.DismissedUntil = timePtr(until)
		dismissals = append(dismissals, &d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dismissals: %w", err)
	}
	return dismissals, nil
}

// Upsert is last-write-wins on (user_id, notification_key).
func (r *PostgresDismissalRepository) Upsert(ctx context.Context, userID uuid.UUID, key string, until *time.Time) error {
	query := `INSERT INTO dismissed_notifications (user_id, notification_key, dismissed_until)
               VALUES ($1, $2, $3)
               ON CONFLICT (user_id, notification_key) DO UPDATE SET dismissed_until = EXCLUDED.dismissed_until`

	var untilValue sql.NullTime
	if until != nil {
		untilValue = sql.NullTime{Time: *until, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, userID, key, untilValue); err != nil {
		return fmt.Errorf("error upserting dismissal: %w", err)
	}
	return nil
}

func (r *PostgresDismissalRepository) Delete(ctx context.Context, userID uuid.UUID, key string) error {
	query := `DELETE FROM dismissed_notifications WHERE user_id = $1 AND notification_key = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, key); err != nil {
		return fmt.Errorf("error deleting dismissal: %w", err)
	}
	return nil
}
