package diplomacy

import "sort"

// resolveRetreats adjudicates a retreat phase. Retreats to a region nobody
// else retreats to succeed; two or more retreats into one region all fail and
// those units disband. Dislodged units without an order are disbanded.
func (g *Game) resolveRetreats(orders []Order, res *PhaseResult) {
	var dislodged []*Unit
	for _, r := range g.m.Regions() {
		if r.Dislodged != nil {
			dislodged = append(dislodged, r.Dislodged)
		}
	}

	ordered := make(map[*Unit]Order, len(orders))
	targets := make(map[string]int)
	for _, o := range orders {
		u := g.m.Region(o.(UnitOrder).Subject().Region).Dislodged
		ordered[u] = o
		if rt, ok := o.(Retreat); ok {
			targets[g.m.Region(rt.To).Name]++
		}
	}

	moves := make(map[*Unit]*Region)
	var disbands []*Unit
	for _, u := range dislodged {
		switch o := ordered[u].(type) {
		case Retreat:
			dst := g.m.Region(o.To)
			if targets[dst.Name] > 1 {
				res.Outcomes = append(res.Outcomes, newOutcome(o, ResultBounced, "retreat bounced, unit disbanded"))
				disbands = append(disbands, u)
				continue
			}
			res.Outcomes = append(res.Outcomes, newOutcome(o, ResultSucceeded, ""))
			moves[u] = dst
		case Disband:
			res.Outcomes = append(res.Outcomes, newOutcome(o, ResultDisbanded, ""))
			disbands = append(disbands, u)
		default:
			auto := Disband{Power: u.Power, Unit: u.Ref()}
			res.Outcomes = append(res.Outcomes, newOutcome(auto, ResultDisbanded, "no retreat ordered"))
			disbands = append(disbands, u)
		}
	}

	for _, u := range disbands {
		g.disband(u)
	}
	units := make([]*Unit, 0, len(moves))
	for u := range moves {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Location() < units[j].Location() })
	for _, u := range units {
		g.m.retreat(u, moves[u])
	}
}

// disband removes a unit from the board and from its power.
func (g *Game) disband(u *Unit) {
	if ps := g.powers[u.Power]; ps != nil {
		ps.removeUnit(u)
	}
	g.m.remove(u)
}
