package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"deadline_notifier/internal/domain/user"
	"deadline_notifier/internal/infra/config"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig,
	userRepo user.Repository,
	settings *SettingsHandler,
	baseLogger *logrus.Entry,
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Hello, %s! You are the administrator. Use /help to see the available commands.", c.Sender().FirstName))
		}

		u, err := userRepo.GetByTelegramID(ctx, senderID)
		if err == nil {
			if u.IsActive {
				logCtx.WithField("user_id", u.ID).Info("User identified as active")
				return c.Send(fmt.Sprintf("Hello, %s! I will remind you about your stage deadlines: on the day, one day and seven days ahead, and when one is missed. Use /settings to choose which reminders you get.", u.Name()))
			}
			logCtx.WithField("user_id", u.ID).Info("User identified as inactive")
			return c.Send("Your account is inactive. Please contact the administrator.")
		} else if !errors.Is(err, user.ErrUserNotFound) {
			logCtx.WithError(err).Error("Error checking user status for /start command")
			return c.Send("Something went wrong while checking your account. Please try again later.")
		}

		logCtx.Info("User is unknown")
		return c.Send("Hello! I send deadline reminders. Ask the administrator to add you if you want to receive them.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID == cfg.AdminTelegramID {
			var helpText strings.Builder
			helpText.WriteString("Administrator commands:\n\n")
			helpText.WriteString("`/add_user <TelegramID> <TimeZone> [Name]`\n - Register a user, e.g. `/add_user 12345 Europe/Berlin Ada`.\n\n")
			helpText.WriteString("`/remove_user <TelegramID>`\n - Deactivate a user. They stop receiving reminders.\n\n")
			helpText.WriteString("`/list_users [active|all]`\n - List users. Active ones by default.\n\n")
			helpText.WriteString("`/help`\n - Show this message.")
			return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		u, err := userRepo.GetByTelegramID(ctx, senderID)
		if err == nil && u.IsActive {
			return c.Send("I check your stage deadlines every minute and message you when one is due today, tomorrow or in seven days, or when it was missed.\n\n" +
				"Each reminder has three buttons: Snooze 1h, Snooze 24h and Dismiss. A dismissed reminder never comes back.\n\n" +
				"/settings - choose which reminders you get\n/help - show this message")
		}
		if err != nil && !errors.Is(err, user.ErrUserNotFound) {
			logCtx.WithError(err).Error("Error checking user status for /help command")
			return c.Send("Something went wrong while checking your account. Please try again later.")
		}
		return c.Send("No commands are available to you. Ask the administrator to add you to receive deadline reminders.")
	})

	b.Handle("/settings", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"command": "/settings", "sender_id": c.Sender().ID})

		text, markup, err := settings.Show(ctx, c.Sender().ID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return c.Send("Settings are available to registered users only.")
			}
			logCtx.WithError(err).Error("Failed to load settings")
			return c.Send(settingsFailed)
		}
		return c.Send(text, markup)
	})
}
