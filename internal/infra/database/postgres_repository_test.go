package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadline_notifier/internal/domain/event"
	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/user"
)

var (
	userID  = uuid.MustParse("3d6f0a2e-8c1b-4f5a-9e7d-2b4c6a8e0f13")
	eventID = uuid.MustParse("5a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d")
	stageA  = uuid.MustParse("a1a1a1a1-b2b2-4c3c-8d4d-e5e5e5e5e5e5")
	stageB  = uuid.MustParse("b2b2b2b2-c3c3-4d4d-9e5e-f6f6f6f6f6f6")
	ts      = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db)
	u := &user.User{TelegramID: 42, DisplayName: sql.NullString{String: "Ada", Valid: true}, TimeZone: "UTC", IsActive: true}

	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs(int64(42), "Ada", "UTC", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(userID.String(), ts, ts))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, userID, u.ID)
	assert.Equal(t, ts, u.CreatedAt)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(q("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_telegram_id_key"})

	err := repo.Create(context.Background(), &user.User{TelegramID: 42, TimeZone: "UTC"})
	assert.ErrorIs(t, err, user.ErrDuplicateTelegramID)
}

func TestUserRepository_GetByTelegramID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db)
	cols := []string{"id", "telegram_id", "display_name", "time_zone", "is_active", "created_at", "updated_at"}

	mock.ExpectQuery(q("FROM users WHERE telegram_id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(userID.String(), int64(42), nil, "Europe/Berlin", true, ts, ts))
	mock.ExpectQuery(q("FROM users WHERE telegram_id = $1")).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
	assert.False(t, u.DisplayName.Valid)
	assert.Equal(t, "Europe/Berlin", u.TimeZone)

	_, err = repo.GetByTelegramID(context.Background(), 7)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_ListActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db)
	cols := []string{"id", "telegram_id", "display_name", "time_zone", "is_active", "created_at", "updated_at"}

	mock.ExpectQuery(q("FROM users WHERE is_active = TRUE")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(userID.String(), int64(42), "Ada", "UTC", true, ts, ts).
			AddRow(uuid.New().String(), int64(43), nil, "UTC", true, ts, ts))

	users, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Ada", users[0].Name())
	assert.Equal(t, "there", users[1].Name())
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(q("UPDATE users")).WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &user.User{ID: userID})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestEventRepository_ListByUserGroupsStages(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresEventRepository(db)
	start := ts.Add(24 * time.Hour)
	emptyEvent := uuid.New()
	cols := []string{"id", "user_id", "title", "created_at", "id", "name", "deadline_start", "deadline_end", "is_completed", "completed_at", "sort_order"}

	mock.ExpectQuery(q("FROM events e")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(eventID.String(), userID.String(), "Hackathon", ts, stageA.String(), "Registration", nil, ts, true, ts, int64(0)).
			AddRow(eventID.String(), userID.String(), "Hackathon", ts, stageB.String(), "Submission", start, start.Add(72*time.Hour), false, nil, int64(1)).
			AddRow(emptyEvent.String(), userID.String(), "Draft", ts, nil, nil, nil, nil, nil, nil, nil))

	events, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.Len(t, events[0].Stages, 2)
	first, second := events[0].Stages[0], events[0].Stages[1]
	assert.Equal(t, stageA, first.ID)
	assert.Equal(t, eventID, first.EventID)
	assert.Nil(t, first.DeadlineStart)
	assert.True(t, first.IsCompleted)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, stageB, second.ID)
	require.NotNil(t, second.DeadlineStart)
	assert.Equal(t, start, *second.DeadlineStart)
	assert.Nil(t, second.CompletedAt)
	assert.Equal(t, 1, second.SortOrder)

	assert.Equal(t, "Draft", events[1].Title)
	assert.Empty(t, events[1].Stages)
}

func TestEventRepository_SetStageCompleted(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresEventRepository(db)

	mock.ExpectExec(q("UPDATE event_stages SET is_completed = $1, completed_at = $2 WHERE id = $3")).
		WithArgs(true, ts, stageA).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE event_stages")).
		WithArgs(false, nil, stageB).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetStageCompleted(context.Background(), stageA, true, ts))
	assert.ErrorIs(t, repo.SetStageCompleted(context.Background(), stageB, false, ts), event.ErrStageNotFound)
}

func TestPreferenceRepository_GetTreatsNullAsEnabled(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPreferenceRepository(db)
	cols := []string{"user_id", "notify_on_day", "notify_1_day_before", "notify_7_days_before", "sound_enabled", "created_at", "updated_at"}

	mock.ExpectQuery(q("FROM notification_preferences WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(userID.String(), nil, false, true, nil, ts, ts))

	p, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, p.NotifyOnDay)
	assert.False(t, p.Notify1DayBefore)
	assert.True(t, p.Notify7DaysBefore)
	assert.True(t, p.SoundEnabled)
}

func TestPreferenceRepository_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPreferenceRepository(db)

	mock.ExpectQuery(q("FROM notification_preferences")).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), userID)
	assert.ErrorIs(t, err, notification.ErrPreferencesNotFound)
}

func TestPreferenceRepository_EnsureDefaultsAndUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPreferenceRepository(db)
	off := false

	mock.ExpectExec(q("ON CONFLICT (user_id) DO NOTHING")).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE notification_preferences")).
		WithArgs(userID, nil, nil, false, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE notification_preferences")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureDefaults(context.Background(), userID))
	require.NoError(t, repo.Update(context.Background(), userID, notification.PreferencesPatch{Notify7DaysBefore: &off}))
	assert.ErrorIs(t, repo.Update(context.Background(), uuid.New(), notification.PreferencesPatch{Notify7DaysBefore: &off}), notification.ErrPreferencesNotFound)
}

func TestDismissalRepository_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDismissalRepository(db)
	until := ts.Add(time.Hour)

	mock.ExpectQuery(q("FROM dismissed_notifications WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "notification_key", "dismissed_until", "created_at"}).
			AddRow(userID.String(), "missed-end-"+stageA.String(), nil, ts).
			AddRow(userID.String(), "tomorrow-"+stageB.String(), until, ts))

	got, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Permanent())
	assert.False(t, got[1].Permanent())
	assert.Equal(t, until, *got[1].DismissedUntil)
}

func TestDismissalRepository_UpsertAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDismissalRepository(db)
	key := "tomorrow-" + stageB.String()
	until := ts.Add(time.Hour)

	mock.ExpectExec(q("ON CONFLICT (user_id, notification_key) DO UPDATE SET dismissed_until = EXCLUDED.dismissed_until")).
		WithArgs(userID, key, until).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO dismissed_notifications")).
		WithArgs(userID, key, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM dismissed_notifications")).
		WithArgs(userID, key).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, userID, key, &until))
	require.NoError(t, repo.Upsert(ctx, userID, key, nil))
	require.NoError(t, repo.Delete(ctx, userID, key))
}

func TestDismissalRepository_UpsertError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDismissalRepository(db)
	boom := errors.New("connection reset")

	mock.ExpectExec(q("INSERT INTO dismissed_notifications")).WillReturnError(boom)

	assert.ErrorIs(t, repo.Upsert(context.Background(), userID, "missed-end-"+stageA.String(), nil), boom)
}

func TestRunMigrations(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("CREATE TABLE IF NOT EXISTS users")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, RunMigrations(context.Background(), db))
}

func TestRunMigrationsRollsBackOnFailure(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("permission denied for schema public")

	mock.ExpectBegin()
	mock.ExpectExec(q("CREATE TABLE")).WillReturnError(boom)
	mock.ExpectRollback()

	assert.ErrorIs(t, RunMigrations(context.Background(), db), boom)
}
