package diplomacy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

var (
	ErrNoGame       = errors.New("no game in progress")
	ErrGameOver     = errors.New("game is over")
	ErrPowerCount   = errors.New("number of players must be between 3 and 7")
	ErrUnknownPower = errors.New("unknown power")
	ErrOccupied     = errors.New("region already occupied")
)

const (
	// StartYear is the year of the first Spring movement phase.
	StartYear = 1901
	// DefaultMaxYears ends the game in a draw after thirty game years.
	DefaultMaxYears = 30
)

// VictoryFunc decides, after each adjustment phase, which powers have won.
// A nil or empty result means play continues.
type VictoryFunc func(g *Game) []Power

// MajorityVictory awards the game to a power holding more than half of all
// supply centers (18 of 34 on the standard map).
func MajorityVictory(g *Game) []Power {
	need := len(g.m.SupplyCenters())/2 + 1
	for _, p := range g.Powers() {
		if len(p.Centers) >= need {
			return []Power{p.Name}
		}
	}
	return nil
}

// Option configures a Game at construction.
type Option func(*Game)

// WithLogger routes engine diagnostics to l. The default logger discards.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Game) { g.log = l }
}

// WithRand sets the source used by SetupGame to pick powers.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithSeed is WithRand with a fresh source seeded from seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithMaxYears ends the game in a draw once n game years have been played.
// Zero disables the limit.
func WithMaxYears(n int) Option {
	return func(g *Game) { g.maxYears = n }
}

// WithVictory replaces the majority-of-centers victory rule.
func WithVictory(v VictoryFunc) Option {
	return func(g *Game) { g.victory = v }
}

// Game is one game of Diplomacy: the board, the participating powers and
// the phase clock. A Game is not safe for concurrent use; hosts serialize
// access per game.
type Game struct {
	m        *Map
	powers   map[Power]*PowerState
	active   []Power
	year     int
	season   Season
	phase    Phase
	turn     int
	over     bool
	winners  []Power
	maxYears int
	victory  VictoryFunc
	rng      *rand.Rand
	log      zerolog.Logger
}

// NewGame returns a seven-power game at Spring 1901 Movement.
func NewGame(opts ...Option) (*Game, error) {
	m, err := NewMap(StandardTopology())
	if err != nil {
		return nil, err
	}
	g := &Game{
		m:        m,
		maxYears: DefaultMaxYears,
		victory:  MajorityVictory,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if err := g.reset(AllPowers()); err != nil {
		return nil, err
	}
	return g, nil
}

// SetupGame restarts the game with numPlayers powers chosen at random.
// Units of powers left out are removed and their home centers become
// unowned. The result maps player index to the power it plays.
func (g *Game) SetupGame(numPlayers int) (map[int]Power, error) {
	if g == nil || g.m == nil {
		return nil, ErrNoGame
	}
	all := AllPowers()
	if numPlayers < 3 || numPlayers > len(all) {
		return nil, fmt.Errorf("%w: got %d", ErrPowerCount, numPlayers)
	}
	perm := g.rng.Perm(len(all))
	seats := make(map[int]Power, numPlayers)
	chosen := make([]Power, 0, numPlayers)
	for i := 0; i < numPlayers; i++ {
		p := all[perm[i]]
		seats[i] = p
		chosen = append(chosen, p)
	}
	if err := g.reset(chosen); err != nil {
		return nil, err
	}
	g.log.Info().Int("players", numPlayers).Strs("powers", powerStrings(g.active)).Msg("game set up")
	return seats, nil
}

// reset clears the board and lays out the starting position for the given powers.
func (g *Game) reset(powers []Power) error {
	for _, r := range g.m.Regions() {
		r.Unit, r.Dislodged, r.Owner = nil, nil, Neutral
	}
	g.powers = make(map[Power]*PowerState, len(powers))
	g.active = g.active[:0]
	g.year, g.season, g.phase = StartYear, Spring, PhaseMovement
	g.turn, g.over, g.winners = 0, false, nil

	ordered := append([]Power(nil), powers...)
	sort.Slice(ordered, func(i, j int) bool { return powerIndex(ordered[i]) < powerIndex(ordered[j]) })
	for _, p := range ordered {
		ps := &PowerState{Name: p, HomeCenters: g.m.HomeCenters(p)}
		for _, c := range ps.HomeCenters {
			ps.addCenter(c)
			g.m.Region(c).Owner = p
		}
		for _, su := range standardStartingUnits[p] {
			u := &Unit{Type: su.Type, Power: p}
			if err := g.m.place(u, g.m.Region(su.Region)); err != nil {
				return err
			}
			ps.addUnit(u)
		}
		g.powers[p] = ps
		g.active = append(g.active, p)
	}
	return nil
}

// Map returns the live board.
func (g *Game) Map() *Map { return g.m }

// Year returns the current game year.
func (g *Game) Year() int { return g.year }

// Season returns the current season.
func (g *Game) Season() Season { return g.season }

// Phase returns the current phase type.
func (g *Game) Phase() Phase { return g.phase }

// Turn returns the number of phases resolved so far.
func (g *Game) Turn() int { return g.turn }

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.over }

// Winners returns the winning powers, empty for an unfinished game or a draw.
func (g *Game) Winners() []Power { return append([]Power(nil), g.winners...) }

// Power returns the state of a participating power, or nil.
func (g *Game) Power(p Power) *PowerState { return g.powers[p] }

// ActivePowers returns the participating powers in standard order.
func (g *Game) ActivePowers() []Power { return append([]Power(nil), g.active...) }

// Powers returns the participating power states in standard order.
func (g *Game) Powers() []*PowerState {
	out := make([]*PowerState, len(g.active))
	for i, p := range g.active {
		out[i] = g.powers[p]
	}
	return out
}

// Survivors returns the powers not yet eliminated.
func (g *Game) Survivors() []Power {
	var out []Power
	for _, p := range g.active {
		if !g.powers[p].Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// PhaseName renders the clock as e.g. "Spring 1901 Movement".
func (g *Game) PhaseName() string {
	return fmt.Sprintf("%s %d %s", g.season.Title(), g.year, g.phase.Title())
}

// OrderableLocations returns the regions that may receive orders from p in
// the current phase: unit regions in movement, dislodged unit regions in
// retreats, and buildable home centers or unit regions in adjustments
// depending on the sign of the power's build count.
func (g *Game) OrderableLocations(p Power) []string {
	ps := g.powers[p]
	if ps == nil || g.over {
		return nil
	}
	var locs []string
	switch g.phase {
	case PhaseMovement:
		for _, u := range ps.Units {
			if !u.Dislodged {
				locs = append(locs, u.Location())
			}
		}
	case PhaseRetreat:
		for _, u := range ps.Units {
			if u.Dislodged {
				locs = append(locs, u.Location())
			}
		}
	case PhaseAdjustment:
		switch n := ps.CountNeededBuilds(); {
		case n > 0:
			locs = g.buildableCenters(ps)
		case n < 0:
			for _, u := range ps.Units {
				locs = append(locs, u.Location())
			}
		}
	}
	sort.Strings(locs)
	return locs
}

// AllOrderableLocations is OrderableLocations for every participating power.
func (g *Game) AllOrderableLocations() map[Power][]string {
	out := make(map[Power][]string, len(g.active))
	for _, p := range g.active {
		out[p] = g.OrderableLocations(p)
	}
	return out
}

// buildableCenters returns home centers the power still controls that are empty.
func (g *Game) buildableCenters(ps *PowerState) []string {
	var out []string
	for _, name := range ps.HomeCenters {
		r := g.m.Region(name)
		if r.Owner == ps.Name && r.Vacant() {
			out = append(out, name)
		}
	}
	return out
}

// updateEliminations flags powers with no units and no centers.
func (g *Game) updateEliminations() {
	for _, ps := range g.Powers() {
		if ps.updateElimination() {
			g.log.Info().Str("power", string(ps.Name)).Str("phase", g.PhaseName()).Msg("power eliminated")
		}
	}
}

func (g *Game) finish(winners []Power, reason string) {
	g.over = true
	g.winners = winners
	g.log.Info().Strs("winners", powerStrings(winners)).Str("reason", reason).Int("year", g.year).Msg("game over")
}

func powerStrings(ps []Power) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}
