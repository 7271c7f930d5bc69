package notification

import (
	"time"

	"github.com/google/uuid"
)

// Dismissal records that the user snoozed (DismissedUntil set) or permanently dismissed
// (DismissedUntil nil) a notification key. Records are never auto-expired.
type Dismissal struct {
	UserID         uuid.UUID
	Key            string
	DismissedUntil *time.Time
	CreatedAt      time.Time
}

func (d *Dismissal) Permanent() bool {
	return d.DismissedUntil == nil
}

// Suppresses reports whether the record still hides its key at now. A snooze whose
// deadline has been reached no longer suppresses.
func (d *Dismissal) Suppresses(now time.Time) bool {
	return d.DismissedUntil == nil || d.DismissedUntil.After(now)
}
