package diplomacy

import (
	"fmt"
	"sort"
	"strings"
)

// Terrain classifies a region as land, sea, or coast.
type Terrain int

const (
	Land  Terrain = iota // Inland region (armies only)
	Sea                  // Sea region (fleets only)
	Coast                // Coastal region (armies or fleets)
)

func (t Terrain) String() string {
	switch t {
	case Land:
		return "land"
	case Sea:
		return "sea"
	case Coast:
		return "coast"
	default:
		return "unknown"
	}
}

// Passage is a bit set of the unit types that may cross a border.
type Passage uint8

const (
	ArmyPassage Passage = 1 << iota
	FleetPassage
)

// Allows reports whether units of type t may cross.
func (p Passage) Allows(t UnitType) bool {
	if t == Army {
		return p&ArmyPassage != 0
	}
	return p&FleetPassage != 0
}

// RegionSpec is the static description of one region in a topology table.
type RegionSpec struct {
	Name         string
	FullName     string
	Terrain      Terrain
	SupplyCenter bool
	HomeOf       Power // Power whose home center this is ("" if none)
}

// Edge is a directed adjacency. Topologies must list both directions.
type Edge struct {
	From    string
	To      string
	Passage Passage
}

// Topology is the fixed input a Map is built from.
type Topology struct {
	Regions []RegionSpec
	Edges   []Edge
	Aliases map[string]string // alternate spelling -> canonical name
}

// TopologyError reports every structural problem found in a topology.
type TopologyError struct {
	Problems []string
}

func (e *TopologyError) Error() string {
	return "malformed topology: " + strings.Join(e.Problems, "; ")
}

// Region is a single space on the board. The Unit and Dislodged slots are
// kept consistent with Unit.Region by Map methods only.
type Region struct {
	Name           string
	FullName       string
	Terrain        Terrain
	IsSupplyCenter bool
	HomeOf         Power
	Owner          Power
	Unit           *Unit
	Dislodged      *Unit

	adjacent [2]map[string]bool // indexed by UnitType
}

// IsAdjacent reports whether a unit of type t can step from r to name.
func (r *Region) IsAdjacent(t UnitType, name string) bool {
	return r.adjacent[t][name]
}

// Neighbors returns the regions reachable from r by type t, sorted by name.
func (r *Region) Neighbors(t UnitType) []string {
	out := make([]string, 0, len(r.adjacent[t]))
	for name := range r.adjacent[t] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Vacant reports whether the region holds neither a unit nor a dislodged unit.
func (r *Region) Vacant() bool {
	return r.Unit == nil && r.Dislodged == nil
}

// Map owns every region of a game. It is built once and mutated in place.
type Map struct {
	regions map[string]*Region
	names   []string
	aliases map[string]string
}

// NewMap validates a topology and builds a Map from it.
func NewMap(t Topology) (*Map, error) {
	m := &Map{
		regions: make(map[string]*Region, len(t.Regions)),
		aliases: make(map[string]string, len(t.Aliases)),
	}
	var problems []string

	for _, spec := range t.Regions {
		name := strings.ToUpper(spec.Name)
		if name == "" {
			problems = append(problems, "region with empty name")
			continue
		}
		if _, dup := m.regions[name]; dup {
			problems = append(problems, "duplicate region "+name)
			continue
		}
		m.regions[name] = &Region{
			Name:           name,
			FullName:       spec.FullName,
			Terrain:        spec.Terrain,
			IsSupplyCenter: spec.SupplyCenter,
			HomeOf:         spec.HomeOf,
			adjacent:       [2]map[string]bool{{}, {}},
		}
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)

	for _, e := range t.Edges {
		from, to := m.regions[strings.ToUpper(e.From)], m.regions[strings.ToUpper(e.To)]
		switch {
		case from == nil:
			problems = append(problems, fmt.Sprintf("edge from unknown region %s", e.From))
			continue
		case to == nil:
			problems = append(problems, fmt.Sprintf("edge to unknown region %s", e.To))
			continue
		case from == to:
			problems = append(problems, "self-adjacent region "+from.Name)
			continue
		case e.Passage&(ArmyPassage|FleetPassage) == 0:
			problems = append(problems, fmt.Sprintf("edge %s -> %s allows no unit type", from.Name, to.Name))
			continue
		}
		if e.Passage.Allows(Army) {
			if from.Terrain == Sea || to.Terrain == Sea {
				problems = append(problems, fmt.Sprintf("army edge %s -> %s touches a sea region", from.Name, to.Name))
			} else {
				from.adjacent[Army][to.Name] = true
			}
		}
		if e.Passage.Allows(Fleet) {
			if from.Terrain == Land || to.Terrain == Land {
				problems = append(problems, fmt.Sprintf("fleet edge %s -> %s touches a land region", from.Name, to.Name))
			} else {
				from.adjacent[Fleet][to.Name] = true
			}
		}
	}

	for _, name := range m.names {
		r := m.regions[name]
		for _, ut := range []UnitType{Army, Fleet} {
			for _, n := range r.Neighbors(ut) {
				if !m.regions[n].adjacent[ut][name] {
					problems = append(problems, fmt.Sprintf("asymmetric %s adjacency %s -> %s", ut, name, n))
				}
			}
		}
	}

	for alias, target := range t.Aliases {
		canon := strings.ToUpper(target)
		if _, ok := m.regions[canon]; !ok {
			problems = append(problems, fmt.Sprintf("alias %s points at unknown region %s", alias, target))
			continue
		}
		m.aliases[strings.ToUpper(alias)] = canon
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, &TopologyError{Problems: problems}
	}
	return m, nil
}

// Region looks a region up by name or alias, case-insensitively.
// Returns nil if it does not exist.
func (m *Map) Region(name string) *Region {
	name = strings.ToUpper(name)
	if canon, ok := m.aliases[name]; ok {
		name = canon
	}
	return m.regions[name]
}

// Names returns every region name in sorted order.
func (m *Map) Names() []string {
	return append([]string(nil), m.names...)
}

// Regions returns every region sorted by name.
func (m *Map) Regions() []*Region {
	out := make([]*Region, len(m.names))
	for i, name := range m.names {
		out[i] = m.regions[name]
	}
	return out
}

// SupplyCenters returns the names of all supply center regions.
func (m *Map) SupplyCenters() []string {
	var out []string
	for _, name := range m.names {
		if m.regions[name].IsSupplyCenter {
			out = append(out, name)
		}
	}
	return out
}

// HomeCenters returns the home supply centers of a power.
func (m *Map) HomeCenters(p Power) []string {
	var out []string
	for _, name := range m.names {
		r := m.regions[name]
		if r.IsSupplyCenter && r.HomeOf == p {
			out = append(out, name)
		}
	}
	return out
}

// Adjacent reports whether a unit of type t can step from one region to another.
func (m *Map) Adjacent(t UnitType, from, to string) bool {
	r := m.Region(from)
	dst := m.Region(to)
	return r != nil && dst != nil && r.IsAdjacent(t, dst.Name)
}

// place puts a unit into an empty region and sets its back-reference.
func (m *Map) place(u *Unit, r *Region) error {
	if r.Unit != nil {
		return fmt.Errorf("%w: %s", ErrOccupied, r.Name)
	}
	r.Unit = u
	u.Region = r
	return nil
}

// placeDislodged puts a unit awaiting retreat into a region's dislodged slot.
func (m *Map) placeDislodged(u *Unit, r *Region, options []string) error {
	if r.Dislodged != nil {
		return fmt.Errorf("%w: dislodged unit already at %s", ErrOccupied, r.Name)
	}
	r.Dislodged = u
	u.Region = r
	u.Dislodged = true
	u.RetreatOptions = append([]string(nil), options...)
	return nil
}

// dislodge moves a unit from its region's unit slot into the dislodged slot.
func (m *Map) dislodge(u *Unit) {
	r := u.Region
	if r.Unit == u {
		r.Unit = nil
	}
	r.Dislodged = u
	u.Dislodged = true
}

// relocate applies a set of simultaneous moves. Every mover is detached
// before any is attached, so chains and rotations land correctly.
func (m *Map) relocate(moves map[*Unit]*Region) {
	for u := range moves {
		if u.Region.Unit == u {
			u.Region.Unit = nil
		}
	}
	for u, to := range moves {
		to.Unit = u
		u.Region = to
	}
}

// retreat moves a dislodged unit into a new region and clears its retreat state.
func (m *Map) retreat(u *Unit, to *Region) {
	if from := u.Region; from.Dislodged == u {
		from.Dislodged = nil
	}
	to.Unit = u
	u.Region = to
	u.Dislodged = false
	u.RetreatOptions = nil
}

// remove takes a unit off the board entirely.
func (m *Map) remove(u *Unit) {
	r := u.Region
	if r == nil {
		return
	}
	if r.Unit == u {
		r.Unit = nil
	}
	if r.Dislodged == u {
		r.Dislodged = nil
	}
	u.Region = nil
	u.Dislodged = false
	u.RetreatOptions = nil
}
