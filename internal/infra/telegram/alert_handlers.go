package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"deadline_notifier/internal/app"
	"deadline_notifier/internal/domain/user"
)

const (
	statusSnoozed1h  = "⏸ Snoozed for 1 hour"
	statusSnoozed24h = "⏸ Snoozed for 24 hours"
	statusDismissed  = "✅ Dismissed"
	statusFailed     = "⚠️ Could not save your choice. You may see this reminder again."
	statusUnknown    = "Unknown action."
)

// AlertActionHandler runs the snooze and dismiss actions behind alert buttons.
type AlertActionHandler struct {
	users         user.Repository
	notifications app.NotificationService
	logger        *logrus.Entry
}

func NewAlertActionHandler(users user.Repository, notifications app.NotificationService, logger *logrus.Entry) *AlertActionHandler {
	return &AlertActionHandler{
		users:         users,
		notifications: notifications,
		logger:        logger.WithField("handler", "alert_action"),
	}
}

// Handle applies the action encoded in data for the sending user. The returned status
// is always suitable for display, including on error.
func (h *AlertActionHandler) Handle(ctx context.Context, senderID int64, data string) (string, error) {
	action, key, err := parseCallbackData(data)
	if err != nil {
		return statusUnknown, err
	}

	u, err := h.users.GetByTelegramID(ctx, senderID)
	if err != nil {
		return statusFailed, fmt.Errorf("failed to resolve sender %d: %w", senderID, err)
	}

	log := h.logger.WithFields(logrus.Fields{"user_id": u.ID, "key": key, "action": action})
	if err := h.notifications.Apply(ctx, u.ID, key, action); err != nil {
		log.WithError(err).Warn("Alert action failed")
		return statusFailed, err
	}
	log.Info("Alert action applied")

	switch action {
	case app.ActionSnooze1h:
		return statusSnoozed1h, nil
	case app.ActionSnooze24h:
		return statusSnoozed24h, nil
	default:
		return statusDismissed, nil
	}
}

// closedAlertText is the alert message after one of its buttons was pressed.
func closedAlertText(original, status string) string {
	original = strings.TrimSpace(original)
	if original == "" {
		return status
	}
	return original + "\n\n" + status
}

// RegisterCallbackHandlers routes inline button presses to the alert and settings
// handlers.
func RegisterCallbackHandlers(ctx context.Context, b *telebot.Bot, alerts *AlertActionHandler, settings *SettingsHandler, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "callback",
			"sender_id": c.Sender().ID,
		})

		switch {
		case isSettingsCallback(data):
			text, markup, err := settings.Toggle(ctx, c.Sender().ID, data)
			if err != nil {
				handlerLogger.WithError(err).Warn("Failed to toggle preference")
				return c.Respond(&telebot.CallbackResponse{Text: settingsFailed})
			}
			if err := c.Edit(text, markup); err != nil && !errors.Is(err, telebot.ErrSameMessageContent) {
				handlerLogger.WithError(err).Warn("Failed to refresh settings message")
			}
			return c.Respond()

		case isAlertCallback(data):
			status, err := alerts.Handle(ctx, c.Sender().ID, data)
			if err != nil {
				c.Bot().OnError(fmt.Errorf("error handling alert action %q: %w", data, err), c)
			}
			// the alert closes whatever the outcome of the write
			original := ""
			if c.Message() != nil {
				original = c.Message().Text
			}
			if editErr := c.Edit(closedAlertText(original, status)); editErr != nil {
				handlerLogger.WithError(editErr).Warn("Failed to close alert message")
			}
			return c.Respond(&telebot.CallbackResponse{Text: status})
		}

		c.Bot().OnError(fmt.Errorf("unhandled callback data: %s", data), c)
		return c.Respond(&telebot.CallbackResponse{Text: statusUnknown})
	})
}
