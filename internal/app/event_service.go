package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"deadline_notifier/internal/domain/event"
)

type EventService struct {
	eventRepo event.Repository
	now       func() time.Time
}

func NewEventService(er event.Repository, now func() time.Time) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{eventRepo: er, now: now}
}

// SetStageCompleted marks a stage done, stamping the completion time, or reopens it.
func (s *EventService) SetStageCompleted(ctx context.Context, stageID uuid.UUID, completed bool) error {
	if err := s.eventRepo.SetStageCompleted(ctx, stageID, completed, s.now()); err != nil {
		return fmt.Errorf("failed to set completion of stage %s: %w", stageID, err)
	}
	return nil
}
