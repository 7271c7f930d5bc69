package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/user"
)

// Custom application-level errors for admin service
var (
	ErrAdminNotAuthorized  = errors.New("performing user is not authorized as an admin")
	ErrUserAlreadyExists   = errors.New("user with this Telegram ID already exists")
	ErrUserAlreadyInactive = errors.New("user is already inactive")
	ErrInvalidTimeZone     = errors.New("invalid time zone")
)

type AdminService struct {
	userRepo        user.Repository
	prefRepo        notification.PreferenceRepository
	adminTelegramID int64
}

func NewAdminService(ur user.Repository, pr notification.PreferenceRepository, adminID int64) *AdminService {
	return &AdminService{
		userRepo:        ur,
		prefRepo:        pr,
		adminTelegramID: adminID,
	}
}

// AddUser registers a user for deadline alerts. A previously removed user is reactivated.
// The user's default-on preferences are created as well.
func (s *AdminService) AddUser(ctx context.Context, performingAdminID, telegramID int64, timeZone, displayName string) (*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if _, err := time.LoadLocation(timeZone); err != nil || timeZone == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, timeZone)
	}

	name := sql.NullString{String: displayName, Valid: displayName != ""}

	existing, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		if existing.IsActive {
			return nil, ErrUserAlreadyExists
		}
		existing.IsActive = true
		existing.TimeZone = timeZone
		if name.Valid {
			existing.DisplayName = name
		}
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate user in repository: %w", err)
		}
		return existing, s.ensurePreferences(ctx, existing)
	case !errors.Is(err, user.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	newUser := &user.User{
		TelegramID:  telegramID,
		DisplayName: name,
		TimeZone:    timeZone,
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrDuplicateTelegramID) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	return newUser, s.ensurePreferences(ctx, newUser)
}

func (s *AdminService) ensurePreferences(ctx context.Context, u *user.User) error {
	if err := s.prefRepo.EnsureDefaults(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to create default preferences: %w", err)
	}
	return nil
}

// RemoveUser deactivates a user. Their data is kept.
func (s *AdminService) RemoveUser(ctx context.Context, performingAdminID, telegramID int64) (*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by Telegram ID for removal: %w", err)
	}

	if !target.IsActive {
		return target, ErrUserAlreadyInactive
	}

	target.IsActive = false
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update user to inactive in repository: %w", err)
	}
	return target, nil
}

func (s *AdminService) ListActiveUsers(ctx context.Context, performingAdminID int64) ([]*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return users, nil
}

func (s *AdminService) ListAllUsers(ctx context.Context, performingAdminID int64) ([]*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list all users: %w", err)
	}
	return users, nil
}
