package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func addComplete(topLevel *cobra.Command) {
	var undo bool

	cmd := &cobra.Command{
		Use:     "complete STAGE_ID",
		Aliases: []string{"done"},
		Short:   "Mark a stage as completed so it stops producing reminders",
		Example: `
deadlinectl complete 0b7e2c1a-5d4f-4e8b-9c3a-1f2e3d4c5b6a
deadlinectl complete 0b7e2c1a-5d4f-4e8b-9c3a-1f2e3d4c5b6a --undo
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a stage id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			stageID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid stage id %q: %w", args[0], err)
			}
			e, err := load(cmd)
			if err != nil {
				return err
			}
			if err := e.events.SetStageCompleted(cmd.Context(), stageID, !undo); err != nil {
				return err
			}
			if undo {
				_, _ = fmt.Fprintf(e.out, "Stage %s reopened\n", stageID)
			} else {
				_, _ = fmt.Fprintf(e.out, "Stage %s completed\n", stageID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the stage as not completed.")

	topLevel.AddCommand(cmd)
}
