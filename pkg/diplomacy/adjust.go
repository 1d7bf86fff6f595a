package diplomacy

import "sort"

// resolveAdjustments applies builds, waives and disbands. Orders are taken
// in submission order until a power's allowance is used up; further orders
// fail. A power that disbands too few units loses the rest to civil disorder.
func (g *Game) resolveAdjustments(orders []Order, res *PhaseResult) {
	byPower := make(map[Power][]Order)
	for _, o := range orders {
		byPower[o.Issuer()] = append(byPower[o.Issuer()], o)
	}

	type build struct {
		power Power
		typ   UnitType
		at    *Region
	}
	var builds []build
	var disbands []*Unit

	for _, ps := range g.Powers() {
		n := ps.CountNeededBuilds()
		switch {
		case n > 0:
			claimed := make(map[*Region]bool)
			for _, o := range byPower[ps.Name] {
				if n == 0 {
					res.Outcomes = append(res.Outcomes, newOutcome(o, ResultFailed, "no builds remaining"))
					continue
				}
				switch o := o.(type) {
				case Waive:
					res.Outcomes = append(res.Outcomes, newOutcome(o, ResultSucceeded, "build waived"))
					n--
				case Build:
					r := g.m.Region(o.Unit.Region)
					if claimed[r] {
						res.Outcomes = append(res.Outcomes, newOutcome(o, ResultFailed, r.Name+" already has a build"))
						continue
					}
					claimed[r] = true
					builds = append(builds, build{power: ps.Name, typ: o.Unit.Type, at: r})
					res.Outcomes = append(res.Outcomes, newOutcome(o, ResultSucceeded, ""))
					n--
				}
			}
		case n < 0:
			need := -n
			removed := make(map[*Unit]bool)
			for _, o := range byPower[ps.Name] {
				d, ok := o.(Disband)
				if !ok {
					continue
				}
				if len(removed) == need {
					res.Outcomes = append(res.Outcomes, newOutcome(o, ResultFailed, "no disbands remaining"))
					continue
				}
				u := g.m.Region(d.Unit.Region).Unit
				removed[u] = true
				disbands = append(disbands, u)
				res.Outcomes = append(res.Outcomes, newOutcome(o, ResultDisbanded, ""))
			}
			if short := need - len(removed); short > 0 {
				for _, u := range g.civilDisorder(ps, short, removed) {
					disbands = append(disbands, u)
					auto := Disband{Power: ps.Name, Unit: u.Ref()}
					res.Outcomes = append(res.Outcomes, newOutcome(auto, ResultDisbanded, "civil disorder"))
				}
			}
		}
	}

	for _, u := range disbands {
		g.disband(u)
	}
	for _, b := range builds {
		u := &Unit{Type: b.typ, Power: b.power}
		if err := g.m.place(u, b.at); err != nil {
			g.log.Error().Err(err).Str("power", string(b.power)).Msg("build skipped")
			continue
		}
		g.powers[b.power].addUnit(u)
	}
}

// civilDisorder picks count units to disband, furthest from any home center
// first, breaking ties by region name. Units in skip are already going.
func (g *Game) civilDisorder(ps *PowerState, count int, skip map[*Unit]bool) []*Unit {
	type candidate struct {
		unit *Unit
		dist int
	}
	var cands []candidate
	for _, u := range ps.Units {
		if !skip[u] {
			cands = append(cands, candidate{u, g.distanceToHome(u.Region, ps.HomeCenters)})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist > cands[j].dist
		}
		return cands[i].unit.Location() < cands[j].unit.Location()
	})
	if count > len(cands) {
		count = len(cands)
	}
	out := make([]*Unit, count)
	for i := range out {
		out[i] = cands[i].unit
	}
	return out
}

// distanceToHome is the breadth-first distance from a region to the nearest
// home center over army and fleet adjacency combined.
func (g *Game) distanceToHome(from *Region, homes []string) int {
	const unreachable = 1 << 30
	if len(homes) == 0 {
		return unreachable
	}
	home := make(map[string]bool, len(homes))
	for _, h := range homes {
		home[h] = true
	}
	dist := map[string]int{from.Name: 0}
	queue := []*Region{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if home[cur.Name] {
			return dist[cur.Name]
		}
		for _, ut := range []UnitType{Army, Fleet} {
			for _, n := range cur.Neighbors(ut) {
				if _, seen := dist[n]; !seen {
					dist[n] = dist[cur.Name] + 1
					queue = append(queue, g.m.regions[n])
				}
			}
		}
	}
	return unreachable
}
