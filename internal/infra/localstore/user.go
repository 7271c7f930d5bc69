package localstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"deadline_notifier/internal/domain/user"
)

var ErrSingleUser = errors.New("local store has exactly one user")

// userNamespace derives stable ids for local user names.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("deadlinectl"))

// LocalUserID is the id the local user named name gets on every run.
func LocalUserID(name string) uuid.UUID {
	return uuid.NewSHA1(userNamespace, []byte(name))
}

// SingleUser is a user.Repository holding the one local user.
type SingleUser struct {
	u *user.User
}

func NewSingleUser(name, timeZone string) *SingleUser {
	return &SingleUser{u: &user.User{
		ID:          LocalUserID(name),
		DisplayName: sql.NullString{String: name, Valid: name != ""},
		TimeZone:    timeZone,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}}
}

// User returns the local user.
func (r *SingleUser) User() *user.User {
	return r.u
}

func (r *SingleUser) Create(context.Context, *user.User) error {
	return ErrSingleUser
}

func (r *SingleUser) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if id != r.u.ID {
		return nil, user.ErrUserNotFound
	}
	return r.u, nil
}

func (r *SingleUser) GetByTelegramID(context.Context, int64) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *SingleUser) Update(_ context.Context, u *user.User) error {
	if u == nil || u.ID != r.u.ID {
		return ErrSingleUser
	}
	r.u = u
	return nil
}

func (r *SingleUser) ListActive(context.Context) ([]*user.User, error) {
	if !r.u.IsActive {
		return nil, nil
	}
	return []*user.User{r.u}, nil
}

func (r *SingleUser) ListAll(context.Context) ([]*user.User, error) {
	return []*user.User{r.u}, nil
}
