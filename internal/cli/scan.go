package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"deadline_notifier/internal/domain/notification"
)

func addScan(topLevel *cobra.Command) {
	var surface bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the reminders that are due now",
		Example: `
deadlinectl scan
deadlinectl scan --alert
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			now := time.Now()
			if err := e.ensurePreferences(ctx); err != nil {
				return err
			}

			if surface {
				e.dispatcher.RequestPermission(ctx)
				return e.notifications.RunScanPass(ctx, now)
			}

			candidates, err := e.notifications.ScanUser(ctx, e.user, now)
			if err != nil {
				return err
			}
			printCandidates(e, candidates)
			return nil
		},
	}
	cmd.Flags().BoolVar(&surface, "alert", false, "Surface the reminders as alerts instead of listing them.")

	topLevel.AddCommand(cmd)
}

func printCandidates(e *env, candidates []notification.Candidate) {
	if len(candidates) == 0 {
		_, _ = fmt.Fprintln(e.out, "Nothing due.")
		return
	}

	bold := color.New(color.Bold)
	missed := color.New(color.FgHiRed)
	loc := e.user.Location(time.Local)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("KEY"), bold.Sprint("DEADLINE"), bold.Sprint("ALERT"))
	for _, c := range candidates {
		title := c.Title
		if c.Category == notification.CategoryMissed {
			title = missed.Sprint(title)
		}
		tbl.AddRow(c.KeyString(), c.Deadline.In(loc).Format("Mon 2 Jan 15:04"), title)
	}
	_, _ = fmt.Fprintln(e.out, tbl)
}
