package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"deadline_notifier/internal/app"
	"deadline_notifier/internal/domain/user"
)

const msgNotAuthorized = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers handlers for admin commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/add_user", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_user",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgNotAuthorized)
		}

		// /add_user <TelegramID> <TimeZone> [Name...]
		args := c.Args()
		if len(args) < 2 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Invalid format. Use: /add_user <TelegramID> <TimeZone> [Name]")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: Telegram ID must be a number.")
		}
		timeZone := args[1]
		name := strings.TrimSpace(strings.Join(args[2:], " "))

		handlerLogger = handlerLogger.WithFields(logrus.Fields{
			"user_telegram_id": telegramID,
			"time_zone":        timeZone,
		})

		newUser, err := adminService.AddUser(ctx, c.Sender().ID, telegramID, timeZone, name)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(msgNotAuthorized)
			case errors.Is(err, app.ErrUserAlreadyExists):
				logWithError.Warn("User already exists")
				return c.Send(fmt.Sprintf("Error: a user with Telegram ID %d already exists.", telegramID))
			case errors.Is(err, app.ErrInvalidTimeZone):
				logWithError.Warn("Invalid time zone")
				return c.Send(fmt.Sprintf("Error: %q is not a valid IANA time zone, e.g. Europe/Berlin.", timeZone))
			default:
				logWithError.Error("Failed to add user")
				return c.Send(fmt.Sprintf("Failed to add the user: %s", err.Error()))
			}
		}

		handlerLogger.WithField("new_user_id", newUser.ID).Info("User added successfully")
		return c.Send(fmt.Sprintf("User %s (ID: %d, %s) added.", newUser.Name(), newUser.TelegramID, newUser.TimeZone))
	})

	b.Handle("/remove_user", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_user",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgNotAuthorized)
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Invalid format. Use: /remove_user <TelegramID>")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Error: Telegram ID must be a number.")
		}
		handlerLogger = handlerLogger.WithField("user_telegram_id", telegramID)

		removed, err := adminService.RemoveUser(ctx, c.Sender().ID, telegramID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(msgNotAuthorized)
			case errors.Is(err, user.ErrUserNotFound):
				logWithError.Warn("User to remove not found")
				return c.Send(fmt.Sprintf("No user with Telegram ID %d.", telegramID))
			case errors.Is(err, app.ErrUserAlreadyInactive):
				logWithError.Warn("User already inactive")
				return c.Send(fmt.Sprintf("User %s (ID: %d) was already deactivated.", removed.Name(), telegramID))
			default:
				logWithError.Error("Failed to remove user")
				return c.Send(fmt.Sprintf("Failed to remove the user: %s", err.Error()))
			}
		}

		handlerLogger.WithField("removed_user_id", removed.ID).Info("User deactivated successfully")
		return c.Send(fmt.Sprintf("User %s (ID: %d) deactivated.", removed.Name(), removed.TelegramID))
	})

	b.Handle("/list_users", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_users",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgNotAuthorized)
		}

		listType := "active"
		if args := c.Args(); len(args) > 0 {
			listType = strings.ToLower(args[0])
		}
		handlerLogger = handlerLogger.WithField("list_type", listType)

		var (
			users []*user.User
			err   error
			title string
		)
		switch listType {
		case "active":
			title = "Active users"
			users, err = adminService.ListActiveUsers(ctx, c.Sender().ID)
		case "all":
			title = "All users"
			users, err = adminService.ListAllUsers(ctx, c.Sender().ID)
		default:
			handlerLogger.Warn("Invalid list type argument")
			return c.Send("Invalid argument. Use 'active' or 'all', or nothing for active users.")
		}
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			if errors.Is(err, app.ErrAdminNotAuthorized) {
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(msgNotAuthorized)
			}
			logWithError.Error("Failed to get list of users")
			return c.Send(fmt.Sprintf("Failed to list users: %s", err.Error()))
		}

		if len(users) == 0 {
			return c.Send("No users found.")
		}
		handlerLogger.WithField("users_count", len(users)).Info("Successfully retrieved user list")
		return c.Send(formatUserList(title, users))
	})
}

func formatUserList(title string, users []*user.User) string {
	var response strings.Builder
	response.WriteString(fmt.Sprintf("--- %s ---\n", title))
	for _, u := range users {
		status := "inactive"
		if u.IsActive {
			status = "active"
		}
		response.WriteString(fmt.Sprintf("Telegram ID: %d, Name: %s, Time zone: %s, Status: %s\n",
			u.TelegramID, u.Name(), u.TimeZone, status))
	}
	return response.String()
}
