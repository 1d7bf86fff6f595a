package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMapCmd() *cobra.Command {
	var gf gameFlags
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Print every region with its owner and occupant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.load()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), g.Visualize())
			return nil
		},
	}
	gf.register(cmd)
	return cmd
}
