package alert

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"deadline_notifier/internal/app"
	"deadline_notifier/internal/domain/notification"
)

// ConsolePresenter prints interactive alerts to a terminal. The actions are offered as
// the commands that perform them.
type ConsolePresenter struct {
	w       io.Writer
	command string

	mu      sync.Mutex
	missed  *color.Color
	soon    *color.Color
	faint   *color.Color
	actions *color.Color
}

// NewConsolePresenter prints to w; command is the CLI name used in action hints.
func NewConsolePresenter(w io.Writer, command string, noColor bool) *ConsolePresenter {
	p := &ConsolePresenter{
		w:       w,
		command: command,
		missed:  color.New(color.Bold, color.FgHiRed),
		soon:    color.New(color.Bold, color.FgHiYellow),
		faint:   color.New(color.Faint),
		actions: color.New(color.FgCyan),
	}
	if noColor {
		for _, c := range []*color.Color{p.missed, p.soon, p.faint, p.actions} {
			c.DisableColor()
		}
	}
	return p
}

func (p *ConsolePresenter) Present(_ context.Context, a app.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := p.soon
	if a.Category == notification.CategoryMissed {
		title = p.missed
	}

	if _, err := title.Fprintln(p.w, a.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(p.w, a.Body); err != nil {
		return err
	}
	if _, err := p.faint.Fprintln(p.w, a.Key); err != nil {
		return err
	}

	hints := make([]string, 0, len(a.Actions))
	for _, action := range a.Actions {
		hints = append(hints, fmt.Sprintf("[%s] %s", action.Label(), p.actionCommand(action, a.Key)))
	}
	_, err := p.actions.Fprintln(p.w, strings.Join(hints, "  "))
	return err
}

func (p *ConsolePresenter) actionCommand(action app.Action, key string) string {
	if d, ok := action.SnoozeFor(); ok {
		return fmt.Sprintf("%s snooze %s --hours %d", p.command, key, int(d.Hours()))
	}
	return fmt.Sprintf("%s dismiss %s", p.command, key)
}
