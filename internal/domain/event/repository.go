package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrStageNotFound = errors.New("event stage not found")

// Repository is the read side of the event CRUD collaborator plus the one mutation the
// notification engine exposes outward: toggling stage completion.
type Repository interface {
	// ListByUser returns the user's events with their stages ordered by sort order.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Event, error)
	SetStageCompleted(ctx context.Context, stageID uuid.UUID, completed bool, at time.Time) error
}
