package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"deadline_notifier/internal/domain/event"
	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/user"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeUserRepo struct {
	users   []*user.User
	listErr error
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range r.users {
		if existing.TelegramID == u.TelegramID {
			return user.ErrDuplicateTelegramID
		}
	}
	u.ID = uuid.New()
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*user.User, error) {
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	for i, existing := range r.users {
		if existing.ID == u.ID {
			r.users[i] = u
			return nil
		}
	}
	return user.ErrUserNotFound
}

func (r *fakeUserRepo) ListActive(_ context.Context) ([]*user.User, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*user.User
	for _, u := range r.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*user.User, error) {
	return r.users, r.listErr
}

type fakeEventRepo struct {
	events    map[uuid.UUID][]*event.Event
	failUsers map[uuid.UUID]error
	completed map[uuid.UUID]time.Time
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:    make(map[uuid.UUID][]*event.Event),
		failUsers: make(map[uuid.UUID]error),
		completed: make(map[uuid.UUID]time.Time),
	}
}

func (r *fakeEventRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*event.Event, error) {
	if err := r.failUsers[userID]; err != nil {
		return nil, err
	}
	return r.events[userID], nil
}

func (r *fakeEventRepo) SetStageCompleted(_ context.Context, stageID uuid.UUID, completed bool, at time.Time) error {
	for _, events := range r.events {
		for _, ev := range events {
			for _, st := range ev.Stages {
				if st.ID == stageID {
					st.SetCompleted(completed, at)
					r.completed[stageID] = at
					return nil
				}
			}
		}
	}
	return event.ErrStageNotFound
}

type fakePrefRepo struct {
	prefs  map[uuid.UUID]*notification.Preferences
	getErr error
}

func newFakePrefRepo() *fakePrefRepo {
	return &fakePrefRepo{prefs: make(map[uuid.UUID]*notification.Preferences)}
}

func (r *fakePrefRepo) Get(_ context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.prefs[userID]
	if !ok {
		return nil, notification.ErrPreferencesNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePrefRepo) EnsureDefaults(_ context.Context, userID uuid.UUID) error {
	if _, ok := r.prefs[userID]; !ok {
		r.prefs[userID] = notification.DefaultPreferences(userID)
	}
	return nil
}

func (r *fakePrefRepo) Update(_ context.Context, userID uuid.UUID, patch notification.PreferencesPatch) error {
	p, ok := r.prefs[userID]
	if !ok {
		return notification.ErrPreferencesNotFound
	}
	p.Apply(patch)
	return nil
}

type fakeDismissalRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]map[string]*notification.Dismissal
	// failures is the number of writes that fail before writes start succeeding;
	// a negative value fails every write.
	failures int
	writeErr error
	writes   int
}

func newFakeDismissalRepo() *fakeDismissalRepo {
	return &fakeDismissalRepo{records: make(map[uuid.UUID]map[string]*notification.Dismissal)}
}

func (r *fakeDismissalRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*notification.Dismissal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Dismissal
	for _, d := range r.records[userID] {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDismissalRepo) failWrite() error {
	r.writes++
	if r.failures < 0 {
		return r.writeErr
	}
	if r.failures > 0 {
		r.failures--
		return r.writeErr
	}
	return nil
}

func (r *fakeDismissalRepo) Upsert(_ context.Context, userID uuid.UUID, key string, until *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failWrite(); err != nil {
		return err
	}
	if r.records[userID] == nil {
		r.records[userID] = make(map[string]*notification.Dismissal)
	}
	r.records[userID][key] = &notification.Dismissal{UserID: userID, Key: key, DismissedUntil: until}
	return nil
}

func (r *fakeDismissalRepo) Delete(_ context.Context, userID uuid.UUID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failWrite(); err != nil {
		return err
	}
	delete(r.records[userID], key)
	return nil
}

type fakePresenter struct {
	alerts []Alert
	err    error
}

func (p *fakePresenter) Present(_ context.Context, a Alert) error {
	if p.err != nil {
		return p.err
	}
	p.alerts = append(p.alerts, a)
	return nil
}

func (p *fakePresenter) keys() []string {
	out := make([]string, 0, len(p.alerts))
	for _, a := range p.alerts {
		out = append(out, a.Key)
	}
	return out
}

type fakeChannel struct {
	permission    Permission
	requestResult Permission
	requestErr    error
	requests      int
	toneErr       error
	tones         int
	notifyErr     error
	notified      []string
}

func (c *fakeChannel) PlayTone(context.Context) error {
	c.tones++
	return c.toneErr
}

func (c *fakeChannel) Notify(_ context.Context, title, _ string) error {
	if c.notifyErr != nil {
		return c.notifyErr
	}
	c.notified = append(c.notified, title)
	return nil
}

func (c *fakeChannel) Permission() Permission { return c.permission }

func (c *fakeChannel) RequestPermission(context.Context) (Permission, error) {
	c.requests++
	if c.requestErr != nil {
		return PermissionDefault, c.requestErr
	}
	c.permission = c.requestResult
	return c.requestResult, nil
}

func keysOf(candidates []notification.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.KeyString())
	}
	return out
}
