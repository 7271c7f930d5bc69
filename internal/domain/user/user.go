package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User is a person whose deadlines are tracked. Alerts are delivered to TelegramID and
// calendar days are evaluated in TimeZone.
type User struct {
	ID          uuid.UUID
	TelegramID  int64
	DisplayName sql.NullString
	TimeZone    string // IANA name, e.g. "Europe/Berlin"
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location resolves the user's time zone. An empty or unknown zone yields fallback.
func (u *User) Location(fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if u == nil || u.TimeZone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return fallback
	}
	return loc
}

// Name returns the display name or a placeholder.
func (u *User) Name() string {
	if u.DisplayName.Valid && u.DisplayName.String != "" {
		return u.DisplayName.String
	}
	return "there"
}
