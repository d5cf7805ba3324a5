// Package cli defines the todoplanner commands.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Debug bool
}

// NewRootCommand creates the root command for the todoplanner CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "todoplanner",
		Short: "Personal task planner",
		Long: `Personal task planner: an HTTP API for categories and tasks scoped to their
owners, with reminders and daily digests delivered through Telegram.

Configuration comes from the environment (an optional .env file is read first).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "debug logging (overrides DEBUG)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))

	return cmd
}
