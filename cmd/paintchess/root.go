package main

import (
	"github.com/spf13/cobra"

	"github.com/park285/paint-chess/internal/obslog"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "paintchess",
		Short:         "Paint chess game server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return obslog.InitFromEnv()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			obslog.Sync()
		},
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSelfplayCommand())
	return cmd
}
