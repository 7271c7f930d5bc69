package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a tracked multi-stage undertaking (a hackathon, an application round).
// It owns its stages; a stage never outlives its event.
type Event struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Stages    []*Stage  `json:"stages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stage is one phase of an event with an optional opening and a mandatory closing deadline.
// DeadlineStart is expected to be on or before DeadlineEnd, but both are evaluated
// independently so a violation is tolerated.
type Stage struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	Name          string     `json:"name"`
	DeadlineStart *time.Time `json:"deadline_start,omitempty"`
	DeadlineEnd   time.Time  `json:"deadline_end"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	SortOrder     int        `json:"sort_order"`
}

// SetCompleted flips completion and keeps CompletedAt consistent with it.
func (s *Stage) SetCompleted(completed bool, at time.Time) {
	s.IsCompleted = completed
	if completed {
		t := at
		s.CompletedAt = &t
		return
	}
	s.CompletedAt = nil
}
