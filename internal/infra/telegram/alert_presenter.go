package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"deadline_notifier/internal/app"
)

// Callback data is "<code>:<notification key>"; Telegram limits it to 64 bytes.
const (
	maxCallbackData = 64
	callbackSep     = ":"
)

var actionCodes = map[app.Action]string{
	app.ActionSnooze1h:  "s1",
	app.ActionSnooze24h: "s24",
	app.ActionDismiss:   "d",
}

var ErrInvalidCallback = errors.New("invalid callback data")

// AlertPresenter shows interactive alerts as Telegram messages with one inline button
// per action.
type AlertPresenter struct {
	sender MessageSender
}

func NewAlertPresenter(sender MessageSender) *AlertPresenter {
	return &AlertPresenter{sender: sender}
}

func (p *AlertPresenter) Present(_ context.Context, a app.Alert) error {
	if a.Recipient == nil {
		return fmt.Errorf("alert %s has no recipient", a.Key)
	}
	markup, err := alertMarkup(a.Key, a.Actions)
	if err != nil {
		return err
	}
	opts := &telebot.SendOptions{
		ReplyMarkup:         markup,
		DisableNotification: a.Silent,
	}
	if err := p.sender.SendMessage(a.Recipient.TelegramID, formatAlert(a), opts); err != nil {
		return fmt.Errorf("failed to send alert to %d: %w", a.Recipient.TelegramID, err)
	}
	return nil
}

func formatAlert(a app.Alert) string {
	return a.Title + "\n\n" + a.Body
}

func alertMarkup(key string, actions []app.Action) (*telebot.ReplyMarkup, error) {
	row := make([]telebot.InlineButton, 0, len(actions))
	for _, action := range actions {
		data, err := callbackData(action, key)
		if err != nil {
			return nil, err
		}
		row = append(row, telebot.InlineButton{Text: action.Label(), Data: data})
	}
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{row}}, nil
}

func callbackData(action app.Action, key string) (string, error) {
	code, ok := actionCodes[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidCallback, action)
	}
	data := code + callbackSep + key
	if len(data) > maxCallbackData {
		return "", fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidCallback, data, maxCallbackData)
	}
	return data, nil
}

// parseCallbackData is the inverse of callbackData.
func parseCallbackData(data string) (app.Action, string, error) {
	code, key, ok := strings.Cut(data, callbackSep)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidCallback, data)
	}
	for action, c := range actionCodes {
		if c == code {
			return action, key, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidCallback, data)
}

func isAlertCallback(data string) bool {
	_, _, err := parseCallbackData(data)
	return err == nil
}
