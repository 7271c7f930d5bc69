package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errRequiresKey = errors.New("requires exactly one notification key")

// New builds the deadlinectl root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           commandName,
		Short:         "Deadline reminders for your events on the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addScan(topLevel)
	addWatch(topLevel)
	addSnooze(topLevel)
	addDismiss(topLevel)
	addUndismiss(topLevel)
	addPrefs(topLevel)
	addComplete(topLevel)
}

// load reads the configuration and wires the engine for cmd.
func load(cmd *cobra.Command) (*env, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return newEnv(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()), nil
}

func exactlyOneKey(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errRequiresKey
	}
	return nil
}
