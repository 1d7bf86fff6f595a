package diplomacy

// seaSearch walks breadth-first from the seas bordering start, stepping only
// through sea regions accepted by usable, and returns the path to the first
// sea region accepted by goal. Every sea is visited at most once.
func (m *Map) seaSearch(start *Region, usable, goal func(*Region) bool) ([]string, bool) {
	prev := make(map[string]string)
	var queue []*Region
	for _, n := range start.Neighbors(Fleet) {
		r := m.regions[n]
		if r.Terrain == Sea && usable(r) {
			prev[n] = ""
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if goal(cur) {
			return tracePath(prev, cur.Name), true
		}
		for _, n := range cur.Neighbors(Fleet) {
			if _, seen := prev[n]; seen {
				continue
			}
			r := m.regions[n]
			if r.Terrain == Sea && usable(r) {
				prev[n] = cur.Name
				queue = append(queue, r)
			}
		}
	}
	return nil, false
}

func tracePath(prev map[string]string, last string) []string {
	var path []string
	for name := last; name != ""; name = prev[name] {
		path = append(path, name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ConvoyPath reports whether an army could be carried from one coastal
// region to another through a chain of sea regions accepted by usable, and
// returns the chain.
func (m *Map) ConvoyPath(from, to *Region, usable func(*Region) bool) ([]string, bool) {
	if from == nil || to == nil || from == to || from.Terrain != Coast || to.Terrain != Coast {
		return nil, false
	}
	return m.seaSearch(from, usable, func(r *Region) bool {
		return r.IsAdjacent(Fleet, to.Name)
	})
}

// seaLinked reports whether the sea region target can be reached from the
// coast through seas accepted by usable.
func (m *Map) seaLinked(coast, target *Region, usable func(*Region) bool) bool {
	_, ok := m.seaSearch(coast, usable, func(r *Region) bool { return r == target })
	return ok
}

// holdsFleet accepts regions currently holding a fleet.
func holdsFleet(r *Region) bool {
	return r.Unit != nil && r.Unit.Type == Fleet
}
