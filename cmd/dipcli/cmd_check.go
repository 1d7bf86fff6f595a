package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

var errInvalidOrders = errors.New("some orders are invalid")

func newCheckCmd() *cobra.Command {
	var gf gameFlags
	var power string
	cmd := &cobra.Command{
		Use:   "check [order...]",
		Short: "Validate orders for one power against the current board",
		Example: `  dipcli check --power france "A PAR - BUR" "F BRE - MAO"
  dipcli check --state fall.json --power italy "A VEN S A TYR - TRI"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.load()
			if err != nil {
				return err
			}
			p := diplomacy.Power(strings.ToLower(power))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s\n", g.PhaseName(), p)

			bad := 0
			for _, text := range args {
				o, err := diplomacy.ParseOrder(text, p)
				if err == nil {
					err = g.ValidateOrder(o)
				}
				if err != nil {
					bad++
					fmt.Fprintf(out, "  INVALID %s: %s\n", text, diplomacy.RejectReason(err))
					continue
				}
				fmt.Fprintf(out, "  OK      %s\n", o)
			}
			if bad > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidOrders, bad, len(args))
			}
			return nil
		},
	}
	gf.register(cmd)
	cmd.Flags().StringVarP(&power, "power", "p", "", "Power issuing the orders")
	cmd.MarkFlagRequired("power")
	return cmd
}
