package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"deadline_notifier/internal/domain/notification"
)

var flagLabels = map[notification.PreferenceFlag]string{
	notification.FlagNotifyOnDay:       "On the day",
	notification.FlagNotify1DayBefore:  "1 day before",
	notification.FlagNotify7DaysBefore: "7 days before",
	notification.FlagSoundEnabled:      "Sound",
}

func addPrefs(topLevel *cobra.Command) {
	var onDay, dayBefore, weekBefore, sound bool

	cmd := &cobra.Command{
		Use:     "prefs",
		Aliases: []string{"settings"},
		Short:   "Show or change reminder preferences",
		Example: `
deadlinectl prefs
deadlinectl prefs --sound=false --seven-days-before=false
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(cmd)
			if err != nil {
				return err
			}

			var patch notification.PreferencesPatch
			if cmd.Flags().Changed("on-day") {
				patch.NotifyOnDay = &onDay
			}
			if cmd.Flags().Changed("one-day-before") {
				patch.Notify1DayBefore = &dayBefore
			}
			if cmd.Flags().Changed("seven-days-before") {
				patch.Notify7DaysBefore = &weekBefore
			}
			if cmd.Flags().Changed("sound") {
				patch.SoundEnabled = &sound
			}

			prefs, err := e.prefs.Update(cmd.Context(), e.user.ID, patch)
			if err != nil {
				return err
			}
			printPreferences(e, prefs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&onDay, "on-day", true, "Remind on the day of a deadline.")
	cmd.Flags().BoolVar(&dayBefore, "one-day-before", true, "Remind one day before a deadline.")
	cmd.Flags().BoolVar(&weekBefore, "seven-days-before", true, "Remind seven days before a deadline.")
	cmd.Flags().BoolVar(&sound, "sound", true, "Play a tone with each alert.")

	topLevel.AddCommand(cmd)
}

func printPreferences(e *env, prefs *notification.Preferences) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("PREFERENCE"), bold.Sprint("ENABLED"))
	for _, f := range notification.AllFlags() {
		v, _ := prefs.Value(f)
		state := "off"
		if v {
			state = "on"
		}
		tbl.AddRow(flagLabels[f], state)
	}
	_, _ = fmt.Fprintln(e.out, tbl)
}
