package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrPreferencesNotFound = errors.New("notification preferences not found")

// PreferenceRepository stores NotificationPreferences, one row per user.
type PreferenceRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	// EnsureDefaults creates the default-on row if the user has none. Existing rows are kept.
	EnsureDefaults(ctx context.Context, userID uuid.UUID) error
	Update(ctx context.Context, userID uuid.UUID, patch PreferencesPatch) error
}

// DismissalRepository stores snoozes and dismissals keyed by (user, notification key).
type DismissalRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Dismissal, error)
	// Upsert is last-write-wins per (userID, key). A nil until means permanent.
	Upsert(ctx context.Context, userID uuid.UUID, key string, until *time.Time) error
	Delete(ctx context.Context, userID uuid.UUID, key string) error
}
