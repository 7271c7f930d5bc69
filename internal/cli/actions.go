package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"deadline_notifier/internal/app"
)

var errInvalidSnooze = errors.New("snooze duration must match an alert action")

// snoozeAction finds the alert action that snoozes for the given number of hours.
func snoozeAction(hours int) (app.Action, error) {
	want := time.Duration(hours) * time.Hour
	var offered []string
	for _, a := range app.AlertActions() {
		d, ok := a.SnoozeFor()
		if !ok {
			continue
		}
		if d == want {
			return a, nil
		}
		offered = append(offered, fmt.Sprintf("%d", int(d.Hours())))
	}
	return "", fmt.Errorf("%w: --hours %d, want one of %v", errInvalidSnooze, hours, offered)
}

func addSnooze(topLevel *cobra.Command) {
	var hours int

	cmd := &cobra.Command{
		Use:   "snooze KEY",
		Short: "Hide a reminder for a while",
		Example: `
deadlinectl snooze tomorrow-0b7e2c1a-5d4f-4e8b-9c3a-1f2e3d4c5b6a --hours 24
`,
		Args: exactlyOneKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := snoozeAction(hours)
			if err != nil {
				return err
			}
			e, err := load(cmd)
			if err != nil {
				return err
			}
			if err := e.notifications.Apply(cmd.Context(), e.user.ID, args[0], action); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.out, "Snoozed for %dh: %s\n", hours, args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&hours, "hours", 1, "Snooze duration in hours, 1 or 24 as offered by the alert.")

	topLevel.AddCommand(cmd)
}

func addDismiss(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "dismiss KEY",
		Short: "Hide a reminder for good",
		Args:  exactlyOneKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(cmd)
			if err != nil {
				return err
			}
			if err := e.notifications.Dismiss(cmd.Context(), e.user.ID, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.out, "Dismissed: %s\n", args[0])
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addUndismiss(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "undismiss KEY",
		Aliases: []string{"restore"},
		Short:   "Show a snoozed or dismissed reminder again",
		Args:    exactlyOneKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(cmd)
			if err != nil {
				return err
			}
			if err := e.notifications.Undismiss(cmd.Context(), e.user.ID, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.out, "Restored: %s\n", args[0])
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
