package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/user"
)

var (
	ErrChannelUnavailable = errors.New("alert channel unavailable")
	ErrPermissionDenied   = errors.New("notification permission denied")
)

// Permission is the state of the native notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// AlertChannel plays the alert tone and shows native notifications.
type AlertChannel interface {
	PlayTone(ctx context.Context) error
	Notify(ctx context.Context, title, body string) error
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
}

// Action is one of the buttons offered on an interactive alert.
type Action string

const (
	ActionSnooze1h  Action = "snooze_1h"
	ActionSnooze24h Action = "snooze_24h"
	ActionDismiss   Action = "dismiss"
)

// AlertActions returns the actions every interactive alert carries.
func AlertActions() []Action {
	return []Action{ActionSnooze1h, ActionSnooze24h, ActionDismiss}
}

func (a Action) Label() string {
	switch a {
	case ActionSnooze1h:
		return "Snooze 1h"
	case ActionSnooze24h:
		return "Snooze 24h"
	case ActionDismiss:
		return "Dismiss"
	}
	return string(a)
}

// SnoozeFor returns the snooze length of a snooze action.
func (a Action) SnoozeFor() (time.Duration, bool) {
	switch a {
	case ActionSnooze1h:
		return time.Hour, true
	case ActionSnooze24h:
		return 24 * time.Hour, true
	}
	return 0, false
}

// Alert is an interactive alert as handed to a Presenter.
type Alert struct {
	Recipient *user.User
	Title     string
	Body      string
	Category  notification.Category
	Key       string
	Silent    bool
	Actions   []Action
}

// Presenter shows an interactive alert to its recipient.
type Presenter interface {
	Present(ctx context.Context, alert Alert) error
}

// Dispatcher surfaces a candidate through the presenter and the optional alert channel.
type Dispatcher struct {
	presenter Presenter
	channel   AlertChannel
	logger    *logrus.Entry

	permOnce   sync.Once
	permission Permission
}

func NewDispatcher(presenter Presenter, channel AlertChannel, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		presenter: presenter,
		channel:   channel,
		logger:    logger.WithField("component", "dispatcher"),
	}
}

// RequestPermission resolves the native notification permission. The channel is asked
// at most once per dispatcher; the answer is kept for the rest of the session.
func (d *Dispatcher) RequestPermission(ctx context.Context) Permission {
	d.permOnce.Do(func() {
		if d.channel == nil {
			d.permission = PermissionDenied
			return
		}
		p := d.channel.Permission()
		if p == PermissionDefault {
			var err error
			p, err = d.channel.RequestPermission(ctx)
			if err != nil {
				d.logger.WithError(err).Debug("Notification permission request failed")
				p = PermissionDenied
			}
		}
		d.permission = p
		d.logger.WithField("permission", p).Debug("Notification permission resolved")
	})
	return d.permission
}

// Dispatch surfaces one candidate. Only a presenter failure is returned; tone and native
// notification failures are logged and skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, recipient *user.User, prefs *notification.Preferences, c notification.Candidate) error {
	key := c.KeyString()
	soundOn := prefs != nil && prefs.SoundEnabled

	if soundOn && d.channel != nil {
		if err := d.channel.PlayTone(ctx); err != nil {
			d.logger.WithError(err).WithField("key", key).Debug("Alert tone skipped")
		}
	}

	alert := Alert{
		Recipient: recipient,
		Title:     c.Title,
		Body:      c.Body,
		Category:  c.Category,
		Key:       key,
		Silent:    !soundOn,
		Actions:   AlertActions(),
	}
	if err := d.presenter.Present(ctx, alert); err != nil {
		return fmt.Errorf("failed to present alert %s: %w", key, err)
	}

	if d.RequestPermission(ctx) == PermissionGranted {
		if err := d.channel.Notify(ctx, c.Title, c.Body); err != nil {
			d.logger.WithError(err).WithField("key", key).Debug("Native notification skipped")
		}
	}
	return nil
}
