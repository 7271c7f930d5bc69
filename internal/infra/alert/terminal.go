package alert

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"deadline_notifier/internal/app"
)

const bell = "\a"

// TerminalChannel plays the alert tone as a terminal bell and raises desktop
// notifications through the OSC 777 escape sequence. Both need an interactive terminal.
type TerminalChannel struct {
	out     *termenv.Output
	enabled bool
	tty     bool

	mu        sync.Mutex
	requested bool
}

// NewTerminalChannel writes to w. Desktop notifications are only offered when
// notifications is true.
func NewTerminalChannel(w io.Writer, notifications bool) *TerminalChannel {
	tty := isTerminal(w)
	return &TerminalChannel{
		out:     termenv.NewOutput(w, termenv.WithTTY(tty)),
		enabled: notifications,
		tty:     tty,
	}
}

func (c *TerminalChannel) PlayTone(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.tty {
		return app.ErrChannelUnavailable
	}
	_, err := io.WriteString(c.out, bell)
	return err
}

func (c *TerminalChannel) Notify(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Permission() != app.PermissionGranted {
		return app.ErrPermissionDenied
	}
	c.out.Notify(title, body)
	return nil
}

// Permission is undecided until requested, and denied outright when notifications are
// disabled or there is no terminal to show them on.
func (c *TerminalChannel) Permission() app.Permission {
	if !c.enabled || !c.tty {
		return app.PermissionDenied
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.requested {
		return app.PermissionDefault
	}
	return app.PermissionGranted
}

func (c *TerminalChannel) RequestPermission(context.Context) (app.Permission, error) {
	c.mu.Lock()
	c.requested = true
	c.mu.Unlock()
	return c.Permission(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NopChannel is an AlertChannel without sound or native notifications.
type NopChannel struct{}

func (NopChannel) PlayTone(context.Context) error { return app.ErrChannelUnavailable }

func (NopChannel) Notify(context.Context, string, string) error { return app.ErrChannelUnavailable }

func (NopChannel) Permission() app.Permission { return app.PermissionDenied }

func (NopChannel) RequestPermission(context.Context) (app.Permission, error) {
	return app.PermissionDenied, nil
}
