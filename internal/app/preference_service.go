package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"deadline_notifier/internal/domain/notification"
)

type PreferenceService struct {
	prefRepo notification.PreferenceRepository
}

func NewPreferenceService(pr notification.PreferenceRepository) *PreferenceService {
	return &PreferenceService{prefRepo: pr}
}

// Get returns the user's preferences, creating the default-on row first if there is none.
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	prefs, err := s.prefRepo.Get(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, notification.ErrPreferencesNotFound) {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	if err := s.prefRepo.EnsureDefaults(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}
	prefs, err = s.prefRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences after creating defaults: %w", err)
	}
	return prefs, nil
}

// Update changes only the flags present in patch and returns the stored result.
func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, patch notification.PreferencesPatch) (*notification.Preferences, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, userID)
	}
	if err := s.prefRepo.EnsureDefaults(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}
	if err := s.prefRepo.Update(ctx, userID, patch); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return s.Get(ctx, userID)
}

// Toggle flips a single flag.
func (s *PreferenceService) Toggle(ctx context.Context, userID uuid.UUID, flag notification.PreferenceFlag) (*notification.Preferences, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, err := prefs.Value(flag)
	if err != nil {
		return nil, err
	}
	patch, err := notification.PatchFor(flag, !current)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, userID, patch)
}
