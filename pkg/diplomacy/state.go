package diplomacy

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBadState is wrapped by RestoreGame for snapshots that cannot be placed on the map.
var ErrBadState = errors.New("invalid game state")

// State is a read-only, JSON-serializable snapshot of a game.
type State struct {
	Year     int                `json:"year"`
	Season   Season             `json:"season"`
	Phase    Phase              `json:"phase"`
	Turn     int                `json:"turn"`
	Units    map[Power][]string `json:"units"`
	Centers  map[Power][]string `json:"centers"`
	GameOver bool               `json:"game_over"`
	Winners  []Power            `json:"winners,omitempty"`
	Powers   []PowerSnapshot    `json:"powers"`
}

// PowerSnapshot is one power inside a State.
type PowerSnapshot struct {
	Name        Power          `json:"name"`
	Units       []UnitSnapshot `json:"units"`
	HomeCenters []string       `json:"home_centers"`
	Centers     []string       `json:"centers"`
	Eliminated  bool           `json:"eliminated,omitempty"`
}

// UnitSnapshot is one unit inside a PowerSnapshot.
type UnitSnapshot struct {
	Type           UnitType `json:"type"`
	Region         string   `json:"region"`
	Dislodged      bool     `json:"dislodged,omitempty"`
	RetreatOptions []string `json:"retreat_options,omitempty"`
}

// SupplyCenterCount returns how many centers p controls in the snapshot.
func (s State) SupplyCenterCount(p Power) int {
	return len(s.Centers[p])
}

// State captures the current game. Units are listed by region name.
func (g *Game) State() State {
	s := State{
		Year:     g.year,
		Season:   g.season,
		Phase:    g.phase,
		Turn:     g.turn,
		Units:    make(map[Power][]string, len(g.active)),
		Centers:  make(map[Power][]string, len(g.active)),
		GameOver: g.over,
		Winners:  g.Winners(),
	}
	for _, ps := range g.Powers() {
		units := append([]*Unit(nil), ps.Units...)
		sort.Slice(units, func(i, j int) bool { return units[i].Location() < units[j].Location() })

		snap := PowerSnapshot{
			Name:        ps.Name,
			Units:       make([]UnitSnapshot, 0, len(units)),
			HomeCenters: append([]string(nil), ps.HomeCenters...),
			Centers:     append([]string{}, ps.Centers...),
			Eliminated:  ps.Eliminated,
		}
		texts := make([]string, 0, len(units))
		for _, u := range units {
			snap.Units = append(snap.Units, UnitSnapshot{
				Type:           u.Type,
				Region:         u.Location(),
				Dislodged:      u.Dislodged,
				RetreatOptions: append([]string(nil), u.RetreatOptions...),
			})
			texts = append(texts, u.String())
		}
		s.Units[ps.Name] = texts
		s.Centers[ps.Name] = append([]string{}, ps.Centers...)
		s.Powers = append(s.Powers, snap)
	}
	return s
}

// RestoreGame rebuilds a game from a snapshot taken with State.
func RestoreGame(s State, opts ...Option) (*Game, error) {
	g, err := NewGame(opts...)
	if err != nil {
		return nil, err
	}
	bad := func(format string, args ...any) (*Game, error) {
		return nil, fmt.Errorf("%w: %s", ErrBadState, fmt.Sprintf(format, args...))
	}

	switch s.Season {
	case Spring, Fall:
	default:
		return bad("unknown season %q", s.Season)
	}
	switch s.Phase {
	case PhaseMovement, PhaseRetreat, PhaseAdjustment:
	default:
		return bad("unknown phase %q", s.Phase)
	}
	if s.Phase == PhaseAdjustment && s.Season != Fall {
		return bad("adjustments only follow fall")
	}

	if err := g.reset(nil); err != nil {
		return nil, err
	}
	g.year, g.season, g.phase, g.turn = s.Year, s.Season, s.Phase, s.Turn
	g.over, g.winners = s.GameOver, append([]Power(nil), s.Winners...)

	snaps := append([]PowerSnapshot(nil), s.Powers...)
	sort.Slice(snaps, func(i, j int) bool { return powerIndex(snaps[i].Name) < powerIndex(snaps[j].Name) })
	for _, snap := range snaps {
		p, err := ParsePower(string(snap.Name))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadState, err)
		}
		if g.powers[p] != nil {
			return bad("power %s listed twice", p)
		}
		ps := &PowerState{Name: p, HomeCenters: g.m.HomeCenters(p), Eliminated: snap.Eliminated}
		for _, name := range snap.Centers {
			r := g.m.Region(name)
			switch {
			case r == nil:
				return bad("unknown region %s", name)
			case !r.IsSupplyCenter:
				return bad("%s is not a supply center", r.Name)
			case r.Owner != Neutral:
				return bad("%s owned by both %s and %s", r.Name, r.Owner, p)
			}
			r.Owner = p
			ps.addCenter(r.Name)
		}
		for _, us := range snap.Units {
			r := g.m.Region(us.Region)
			if r == nil {
				return bad("unknown region %s", us.Region)
			}
			u := &Unit{Type: us.Type, Power: p}
			if us.Dislodged {
				err = g.m.placeDislodged(u, r, us.RetreatOptions)
			} else {
				err = g.m.place(u, r)
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadState, err)
			}
			ps.addUnit(u)
		}
		g.powers[p] = ps
		g.active = append(g.active, p)
	}
	return g, nil
}
