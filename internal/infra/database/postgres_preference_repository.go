package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"deadline_notifier/internal/domain/notification"
)

type PostgresPreferenceRepository struct {
	db *sql.DB
}

func NewPostgresPreferenceRepository(db *sql.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

func (r *PostgresPreferenceRepository) Get(ctx context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	query := `SELECT user_id, notify_on_day, notify_1_day_before, notify_7_days_before, sound_enabled, created_at, updated_at
               FROM notification_preferences WHERE user_id = $1`

	var (
		p                                 notification.Preferences
		onDay, oneDay, sevenDays, soundOn sql.NullBool
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &onDay, &oneDay, &sevenDays, &soundOn, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notification.ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("error getting notification preferences: %w", err)
	}

	p.NotifyOnDay = enabled(onDay)
	p.Notify1DayBefore = enabled(oneDay)
	p.Notify7DaysBefore = enabled(sevenDays)
	p.SoundEnabled = enabled(soundOn)
	return &p, nil
}

func (r *PostgresPreferenceRepository) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	query := `INSERT INTO notification_preferences (user_id, notify_on_day, notify_1_day_before, notify_7_days_before, sound_enabled)
               VALUES ($1, TRUE, TRUE, TRUE, TRUE)
               ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("error creating default notification preferences: %w", err)
	}
	return nil
}

// Update sets only the flags present in patch.
func (r *PostgresPreferenceRepository) Update(ctx context.Context, userID uuid.UUID, patch notification.PreferencesPatch) error {
	query := `UPDATE notification_preferences
               SET notify_on_day = COALESCE($2, notify_on_day),
                   notify_1_day_before = COALESCE($3, notify_1_day_before),
                   notify_7_days_before = COALESCE($4, notify_7_days_before),
                   sound_enabled = COALESCE($5, sound_enabled),
                   updated_at = NOW()
               WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID,
		nullBool(patch.NotifyOnDay), nullBool(patch.Notify1DayBefore), nullBool(patch.Notify7DaysBefore), nullBool(patch.SoundEnabled))
	if err != nil {
		return fmt.Errorf("error updating notification preferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return notification.ErrPreferencesNotFound
	}
	return nil
}

// enabled treats NULL as on.
func enabled(b sql.NullBool) bool {
	return !b.Valid || b.Bool
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
