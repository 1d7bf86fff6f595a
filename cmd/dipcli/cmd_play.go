package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

func newPlayCmd() *cobra.Command {
	var gf gameFlags
	var ordersPath, outPath string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Adjudicate one phase from an order file",
		Long: `Reads "power: order" lines, resolves the current phase and prints
each outcome. Use --out to save the resulting state for the next phase.
Without --orders every unit holds (or retreats are disbanded).`,
		Example: `  dipcli play --orders spring.txt --out fall.json
  dipcli play --state fall.json --orders fall.txt --out winter.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.load()
			if err != nil {
				return err
			}

			orders := map[diplomacy.Power][]string{}
			if ordersPath != "" {
				f, err := os.Open(ordersPath)
				if err != nil {
					return fmt.Errorf("open orders: %w", err)
				}
				orders, err = readOrders(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("read orders: %w", err)
				}
			}

			phase := g.PhaseName()
			res, err := g.ResolveOrders(orders)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), phase, g, res)

			if outPath != "" {
				if err := saveState(outPath, g); err != nil {
					return fmt.Errorf("save state: %w", err)
				}
			}
			return nil
		},
	}
	gf.register(cmd)
	cmd.Flags().StringVarP(&ordersPath, "orders", "o", "", "Order file, one \"power: order\" per line")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the resulting state snapshot here")
	return cmd
}

func printResult(w io.Writer, phase string, g *diplomacy.Game, res *diplomacy.PhaseResult) {
	fmt.Fprintf(w, "== %s ==\n", phase)
	for _, o := range res.Outcomes {
		line := fmt.Sprintf("  %-8s %-24s %s", o.Power, o.Text, o.Result)
		if o.Note != "" {
			line += " (" + o.Note + ")"
		}
		fmt.Fprintln(w, line)
	}
	if len(res.Rejected) > 0 {
		fmt.Fprintln(w, "Rejected:")
		for _, r := range res.Rejected {
			fmt.Fprintf(w, "  %-8s %-24s %s\n", r.Power, r.Text, r.Reason)
		}
	}
	if len(res.Dislodged) > 0 {
		fmt.Fprintln(w, "Dislodged:")
		for _, d := range res.Dislodged {
			fmt.Fprintf(w, "  %-8s %s from %s, may retreat to %v\n", d.Power, d.Unit, d.AttackerFrom, d.RetreatOptions)
		}
	}
	if g.Over() {
		if winners := g.Winners(); len(winners) > 0 {
			fmt.Fprintf(w, "Game over, won by %v\n", winners)
		} else {
			fmt.Fprintln(w, "Game over, draw")
		}
		return
	}
	fmt.Fprintf(w, "Next: %s\n", g.PhaseName())
}
