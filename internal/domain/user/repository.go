package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateTelegramID = errors.New("user with this Telegram ID already exists")
)

// Repository defines the operations for persisting and retrieving User entities.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	Update(ctx context.Context, u *User) error // display name, time zone, active flag
	ListActive(ctx context.Context) ([]*User, error)
	ListAll(ctx context.Context) ([]*User, error)
}
