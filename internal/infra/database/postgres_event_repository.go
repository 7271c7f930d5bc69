package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"deadline_notifier/internal/domain/event"
)

type PostgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// ListByUser loads the user's events with their stages in one query.
func (r *PostgresEventRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*event.Event, error) {
	query := `SELECT e.id, e.user_id, e.title, e.created_at,
                     s.id, s.name, s.deadline_start, s.deadline_end, s.is_completed, s.completed_at, s.sort_order
               FROM events e
               LEFT JOIN event_stages s ON s.event_id = e.id
               WHERE e.user_id = $1
               ORDER BY e.created_at, e.id, s.sort_order, s.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing events for user %s: %w", userID, err)
	}
	defer rows.Close()

	events := make([]*event.Event, 0)
	var current *event.Event
	for rows.Next() {
		var (
			ev            event.Event
			stageID       uuid.NullUUID
			name          sql.NullString
			deadlineStart sql.NullTime
			deadlineEnd   sql.NullTime
			isCompleted   sql.NullBool
			completedAt   sql.NullTime
			sortOrder     sql.NullInt64
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Title, &ev.CreatedAt,
			&stageID, &name, &deadlineStart, &deadlineEnd, &isCompleted, &completedAt, &sortOrder); err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}

		if current == nil || current.ID != ev.ID {
			current = &ev
			events = append(events, current)
		}
		if !stageID.Valid {
			continue
		}
		current.Stages = append(current.Stages, &event.Stage{
			ID:            stageID.UUID,
			EventID:       current.ID,
			Name:          name.String,
			DeadlineStart: timePtr(deadlineStart),
			DeadlineEnd:   deadlineEnd.Time,
			IsCompleted:   isCompleted.Bool,
			CompletedAt:   timePtr(completedAt),
			SortOrder:     int(sortOrder.Int64),
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *PostgresEventRepository) SetStageCompleted(ctx context.Context, stageID uuid.UUID, completed bool, at time.Time) error {
	query := `UPDATE event_stages SET is_completed = $1, completed_at = $2 WHERE id = $3`

	completedAt := sql.NullTime{Time: at, Valid: completed}
	res, err := r.db.ExecContext(ctx, query, completed, completedAt, stageID)
	if err != nil {
		return fmt.Errorf("error updating stage completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return event.ErrStageNotFound
	}
	return nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
