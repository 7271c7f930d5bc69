package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"deadline_notifier/internal/domain/event"
	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/user"
	"deadline_notifier/internal/infra/metrics"
)

// NotificationService defines the operations of the deadline notification engine.
type NotificationService interface {
	// RunScanPass scans every active user once and surfaces the alerts that pass the gate.
	RunScanPass(ctx context.Context, now time.Time) error
	// ScanUser returns the gated candidates for one user without surfacing them.
	ScanUser(ctx context.Context, u *user.User, now time.Time) ([]notification.Candidate, error)
	Snooze(ctx context.Context, userID uuid.UUID, key string, d time.Duration) error
	Dismiss(ctx context.Context, userID uuid.UUID, key string) error
	Undismiss(ctx context.Context, userID uuid.UUID, key string) error
	// Apply runs the write behind an alert action.
	Apply(ctx context.Context, userID uuid.UUID, key string, action Action) error
}

// SurfacedFunc is called once for every candidate that was surfaced.
type SurfacedFunc func(u *user.User, c notification.Candidate)

type ServiceOption func(*NotificationServiceImpl)

// WithDefaultLocation sets the zone used for users without a valid time zone.
func WithDefaultLocation(loc *time.Location) ServiceOption {
	return func(s *NotificationServiceImpl) {
		if loc != nil {
			s.defaultLoc = loc
		}
	}
}

// WithWriteRetry bounds the retries of snooze and dismiss writes.
func WithWriteRetry(attempts uint64, initialInterval time.Duration) ServiceOption {
	return func(s *NotificationServiceImpl) {
		s.retryAttempts = attempts
		if initialInterval > 0 {
			s.retryInterval = initialInterval
		}
	}
}

func WithSurfacedCallback(fn SurfacedFunc) ServiceOption {
	return func(s *NotificationServiceImpl) {
		s.onSurfaced = fn
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *NotificationServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	userRepo      user.Repository
	eventRepo     event.Repository
	prefRepo      notification.PreferenceRepository
	dismissalRepo notification.DismissalRepository
	dispatcher    *Dispatcher
	logger        *logrus.Entry

	defaultLoc    *time.Location
	retryAttempts uint64
	retryInterval time.Duration
	onSurfaced    SurfacedFunc
	now           func() time.Time

	passMu   sync.Mutex
	surfaced *surfacedSet
}

func NewNotificationServiceImpl(
	ur user.Repository,
	er event.Repository,
	pr notification.PreferenceRepository,
	dr notification.DismissalRepository,
	dispatcher *Dispatcher,
	logger *logrus.Entry,
	opts ...ServiceOption,
) *NotificationServiceImpl {
	s := &NotificationServiceImpl{
		userRepo:      ur,
		eventRepo:     er,
		prefRepo:      pr,
		dismissalRepo: dr,
		dispatcher:    dispatcher,
		logger:        logger.WithField("component", "notification_service"),
		defaultLoc:    time.UTC,
		retryAttempts: 3,
		retryInterval: 200 * time.Millisecond,
		now:           time.Now,
		surfaced:      newSurfacedSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunScanPass processes every active user. Passes never overlap. A failing user is logged
// and the pass moves on; the failures are returned together.
func (s *NotificationServiceImpl) RunScanPass(ctx context.Context, now time.Time) error {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	start := time.Now()
	defer func() { metrics.ScanDuration.Observe(time.Since(start).Seconds()) }()

	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		metrics.ScanPasses.WithLabelValues(metrics.ResultError).Inc()
		s.logger.WithError(err).Error("Failed to list active users")
		return fmt.Errorf("failed to list active users: %w", err)
	}
	s.logger.WithField("users", len(users)).Debug("Starting scan pass")

	var errs []error
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.processUser(ctx, u, now); err != nil {
			s.logger.WithError(err).WithField("user_id", u.ID).Error("Scan failed for user")
			errs = append(errs, fmt.Errorf("user %s: %w", u.ID, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		metrics.ScanPasses.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	metrics.ScanPasses.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

func (s *NotificationServiceImpl) processUser(ctx context.Context, u *user.User, now time.Time) error {
	prefs, events, dismissals, err := s.load(ctx, u)
	if err != nil {
		return err
	}
	if prefs == nil {
		s.logger.WithField("user_id", u.ID).Debug("No preferences yet, skipping user")
		return nil
	}

	gate := NewGate(dismissals)
	candidates := ScanDeadlines(now.In(u.Location(s.defaultLoc)), events, prefs)

	var errs []error
	for _, c := range candidates {
		key := c.KeyString()
		metrics.Candidates.WithLabelValues(string(c.Category)).Inc()
		fields := logrus.Fields{"user_id": u.ID, "key": key}

		if gate.Suppressed(key, now) {
			// The write may come from another process; clear the session mark so the
			// key surfaces again once a snooze runs out.
			s.surfaced.Forget(u.ID, key)
			metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonDismissed).Inc()
			s.logger.WithFields(fields).Debug("Candidate suppressed by dismissal")
			continue
		}
		if s.surfaced.Seen(u.ID, key) {
			metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonSurfaced).Inc()
			continue
		}

		if err := s.dispatcher.Dispatch(ctx, u, prefs, c); err != nil {
			s.logger.WithFields(fields).WithError(err).Warn("Failed to surface alert")
			errs = append(errs, err)
			continue
		}
		s.surfaced.Mark(u.ID, key)
		metrics.AlertsDispatched.WithLabelValues(string(c.Category)).Inc()
		s.logger.WithFields(fields).Info("Alert surfaced")

		if s.onSurfaced != nil {
			s.onSurfaced(u, c)
		}
	}
	return errors.Join(errs...)
}

// load reads the user's stores once. Missing preferences are returned as nil without error.
func (s *NotificationServiceImpl) load(ctx context.Context, u *user.User) (*notification.Preferences, []*event.Event, []*notification.Dismissal, error) {
	prefs, err := s.prefRepo.Get(ctx, u.ID)
	if err != nil {
		if errors.Is(err, notification.ErrPreferencesNotFound) {
			return nil, nil, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	events, err := s.eventRepo.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list events: %w", err)
	}

	dismissals, err := s.dismissalRepo.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list dismissals: %w", err)
	}
	return prefs, events, dismissals, nil
}

func (s *NotificationServiceImpl) ScanUser(ctx context.Context, u *user.User, now time.Time) ([]notification.Candidate, error) {
	prefs, events, dismissals, err := s.load(ctx, u)
	if err != nil {
		return nil, err
	}
	return Scan(now.In(u.Location(s.defaultLoc)), events, prefs, dismissals), nil
}

// Snooze hides key until now+d.
func (s *NotificationServiceImpl) Snooze(ctx context.Context, userID uuid.UUID, key string, d time.Duration) error {
	if _, err := notification.ParseKey(key); err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("snooze duration must be positive, got %s", d)
	}

	until := s.now().Add(d)
	err := s.write(ctx, "snooze", userID, key, func(ctx context.Context) error {
		return s.dismissalRepo.Upsert(ctx, userID, key, &until)
	})
	if err != nil {
		return fmt.Errorf("failed to snooze %s: %w", key, err)
	}
	s.surfaced.Forget(userID, key)
	return nil
}

// Dismiss hides key permanently.
func (s *NotificationServiceImpl) Dismiss(ctx context.Context, userID uuid.UUID, key string) error {
	if _, err := notification.ParseKey(key); err != nil {
		return err
	}

	err := s.write(ctx, "dismiss", userID, key, func(ctx context.Context) error {
		return s.dismissalRepo.Upsert(ctx, userID, key, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to dismiss %s: %w", key, err)
	}
	s.surfaced.Forget(userID, key)
	return nil
}

// Undismiss removes any snooze or dismissal of key.
func (s *NotificationServiceImpl) Undismiss(ctx context.Context, userID uuid.UUID, key string) error {
	if _, err := notification.ParseKey(key); err != nil {
		return err
	}

	err := s.write(ctx, "undismiss", userID, key, func(ctx context.Context) error {
		return s.dismissalRepo.Delete(ctx, userID, key)
	})
	if err != nil {
		return fmt.Errorf("failed to undismiss %s: %w", key, err)
	}
	s.surfaced.Forget(userID, key)
	return nil
}

func (s *NotificationServiceImpl) Apply(ctx context.Context, userID uuid.UUID, key string, action Action) error {
	if d, ok := action.SnoozeFor(); ok {
		return s.Snooze(ctx, userID, key, d)
	}
	if action == ActionDismiss {
		return s.Dismiss(ctx, userID, key)
	}
	return fmt.Errorf("unknown alert action %q", action)
}

// write retries op with exponential backoff until it succeeds, the attempts run out or
// ctx is done.
func (s *NotificationServiceImpl) write(ctx context.Context, action string, userID uuid.UUID, key string, op func(context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInterval

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := op(ctx)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"action":  action,
				"user_id": userID,
				"key":     key,
				"attempt": attempt,
			}).Debug("Dismissal write attempt failed")
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, s.retryAttempts), ctx))

	if err != nil {
		metrics.DismissalWrites.WithLabelValues(action, metrics.ResultError).Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{"action": action, "user_id": userID, "key": key}).Warn("Dismissal write failed")
		return err
	}
	metrics.DismissalWrites.WithLabelValues(action, metrics.ResultOK).Inc()
	return nil
}
