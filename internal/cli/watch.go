package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"deadline_notifier/internal/infra/scheduler"
)

func addWatch(topLevel *cobra.Command) {
	var (
		every  string
		settle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Surface reminders as alerts until interrupted",
		Example: `
deadlinectl watch
deadlinectl watch --every "@every 5m"
deadlinectl watch --every off
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("every") {
				every = e.cfg.ScanEvery
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := e.ensurePreferences(ctx); err != nil {
				return err
			}

			e.dispatcher.RequestPermission(ctx)

			s := scheduler.NewScanScheduler(e.notifications, e.logger, every, settle, time.Minute)
			if err := s.Start(); err != nil {
				return err
			}
			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&every, "every", "@every 1m", `Cron spec of the re-scan, or "off" to scan once.`)
	cmd.Flags().DurationVar(&settle, "settle", 3*time.Second, "Delay before the first scan.")

	topLevel.AddCommand(cmd)
}
