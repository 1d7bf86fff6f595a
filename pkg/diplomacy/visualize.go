package diplomacy

import (
	"fmt"
	"strings"
)

// Visualize dumps every region with its owner, occupant and adjacency.
// The format is for humans and carries no compatibility promise.
func (g *Game) Visualize() string {
	var b strings.Builder
	title := "DIPLOMACY MAP OVERVIEW"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	fmt.Fprintf(&b, "%s%s\n", g.PhaseName(), overSuffix(g))

	for _, r := range g.m.Regions() {
		header := fmt.Sprintf("%s %s (%s)", r.Name, r.FullName, r.Terrain)
		if r.IsSupplyCenter {
			header += " [SC]"
		}
		b.WriteString(header + "\n")
		if r.IsSupplyCenter {
			fmt.Fprintf(&b, "  Owner: %s\n", r.Owner.Title())
		}
		unit := "None"
		if r.Unit != nil {
			unit = fmt.Sprintf("%s (%s)", r.Unit, r.Unit.Power.Title())
		}
		fmt.Fprintf(&b, "  Unit:  %s\n", unit)
		if d := r.Dislodged; d != nil {
			fmt.Fprintf(&b, "  Dislodged: %s (%s) retreats: %s\n", d, d.Power.Title(), joinOrNone(d.RetreatOptions))
		}
		fmt.Fprintf(&b, "  Adj(A): %s\n", joinOrNone(r.Neighbors(Army)))
		fmt.Fprintf(&b, "  Adj(F): %s\n", joinOrNone(r.Neighbors(Fleet)))
	}
	return b.String()
}

func overSuffix(g *Game) string {
	if !g.over {
		return ""
	}
	if len(g.winners) == 0 {
		return " (game over: draw)"
	}
	return fmt.Sprintf(" (game over: %s)", strings.Join(powerStrings(g.winners), ", "))
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
