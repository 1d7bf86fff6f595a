// Command dipcli adjudicates Diplomacy phases locally from order files and
// JSON state snapshots.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "dipcli",
		Short:        "Local Diplomacy adjudicator",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine decisions to stderr")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			engineLog = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
				Level(zerolog.DebugLevel).With().Timestamp().Logger()
		}
	}

	root.AddCommand(newMapCmd(), newCheckCmd(), newPlayCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
