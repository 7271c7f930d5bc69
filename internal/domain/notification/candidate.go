package notification

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a reminder the scanner found due. It surfaces only if the gate lets it through.
type Candidate struct {
	Key        Key
	Category   Category
	EventID    uuid.UUID
	StageID    uuid.UUID
	EventTitle string
	StageName  string
	Deadline   time.Time
	Title      string
	Body       string
}

// KeyString is the persisted form of the candidate's key.
func (c Candidate) KeyString() string {
	if c.Key == nil {
		return ""
	}
	return c.Key.String()
}
