package telegram

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"deadline_notifier/internal/app"
	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/user"
)

const (
	settingsPrefix = "pref:"
	settingsFailed = "Could not update your settings. Please try again later."
	settingsHeader = "🔔 Reminder settings\nTap a switch to turn it on or off."
)

var flagLabels = map[notification.PreferenceFlag]string{
	notification.FlagNotifyOnDay:       "On the deadline day",
	notification.FlagNotify1DayBefore:  "1 day before",
	notification.FlagNotify7DaysBefore: "7 days before",
	notification.FlagSoundEnabled:      "Sound",
}

// SettingsHandler shows and toggles a user's reminder preferences.
type SettingsHandler struct {
	users user.Repository
	prefs *app.PreferenceService
}

func NewSettingsHandler(users user.Repository, prefs *app.PreferenceService) *SettingsHandler {
	return &SettingsHandler{users: users, prefs: prefs}
}

func (h *SettingsHandler) Show(ctx context.Context, senderID int64) (string, *telebot.ReplyMarkup, error) {
	u, err := h.activeUser(ctx, senderID)
	if err != nil {
		return "", nil, err
	}
	p, err := h.prefs.Get(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}
	return settingsHeader, settingsMarkup(p), nil
}

// Toggle flips the flag named in the callback data and returns the refreshed view.
func (h *SettingsHandler) Toggle(ctx context.Context, senderID int64, data string) (string, *telebot.ReplyMarkup, error) {
	flag, err := parseSettingsCallback(data)
	if err != nil {
		return "", nil, err
	}
	u, err := h.activeUser(ctx, senderID)
	if err != nil {
		return "", nil, err
	}
	p, err := h.prefs.Toggle(ctx, u.ID, flag)
	if err != nil {
		return "", nil, err
	}
	return settingsHeader, settingsMarkup(p), nil
}

func (h *SettingsHandler) activeUser(ctx context.Context, senderID int64) (*user.User, error) {
	u, err := h.users.GetByTelegramID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func settingsMarkup(p *notification.Preferences) *telebot.ReplyMarkup {
	rows := make([][]telebot.InlineButton, 0, len(notification.AllFlags()))
	for _, flag := range notification.AllFlags() {
		on, _ := p.Value(flag)
		mark := "❌"
		if on {
			mark = "✅"
		}
		rows = append(rows, []telebot.InlineButton{{
			Text: mark + " " + flagLabels[flag],
			Data: settingsPrefix + string(flag),
		}})
	}
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

func isSettingsCallback(data string) bool {
	return strings.HasPrefix(data, settingsPrefix)
}

func parseSettingsCallback(data string) (notification.PreferenceFlag, error) {
	flag := notification.PreferenceFlag(strings.TrimPrefix(data, settingsPrefix))
	if !isSettingsCallback(data) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCallback, data)
	}
	if _, ok := flagLabels[flag]; !ok {
		return "", fmt.Errorf("%w: unknown preference %q", ErrInvalidCallback, flag)
	}
	return flag, nil
}
