package diplomacy

import (
	"testing"

	"golang.org/x/exp/rand"
)

// FuzzResolveOrders plays random legal-looking orders for a few years and
// checks the board stays consistent.
func FuzzResolveOrders(f *testing.F) {
	f.Add(uint64(42))
	f.Add(uint64(123456))
	f.Add(uint64(0))

	f.Fuzz(func(t *testing.T, seed uint64) {
		rng := rand.New(rand.NewSource(seed))
		g, err := NewGame(WithRand(rng), WithMaxYears(3))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.SetupGame(3 + rng.Intn(5)); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 20 && !g.Over(); i++ {
			orders := make(map[Power][]string)
			for _, p := range g.ActivePowers() {
				for _, loc := range g.OrderableLocations(p) {
					orders[p] = append(orders[p], randomOrder(rng, g, p, loc))
				}
			}
			res, err := g.ResolveOrders(orders)
			if err != nil {
				t.Fatal(err)
			}
			checkBoard(t, g)
			for _, d := range res.Dislodged {
				for _, opt := range d.RetreatOptions {
					if r := g.Map().Region(opt); r == nil || !r.Vacant() {
						t.Errorf("retreat option %s for %s is not vacant", opt, d.Unit)
					}
				}
			}
		}
	})
}

func randomOrder(rng *rand.Rand, g *Game, p Power, loc string) string {
	r := g.Map().Region(loc)
	switch g.Phase() {
	case PhaseRetreat:
		u := r.Dislodged
		if len(u.RetreatOptions) == 0 || rng.Intn(4) == 0 {
			return u.String()[1:] + " D"
		}
		return u.String()[1:] + " R " + u.RetreatOptions[rng.Intn(len(u.RetreatOptions))]
	case PhaseAdjustment:
		if r.Unit != nil {
			return r.Unit.String() + " D"
		}
		if rng.Intn(2) == 0 && r.Terrain == Coast {
			return "F " + loc + " B"
		}
		return "A " + loc + " B"
	}

	u := r.Unit
	adj := r.Neighbors(u.Type)
	if len(adj) == 0 {
		return u.String() + " H"
	}
	to := adj[rng.Intn(len(adj))]
	switch rng.Intn(4) {
	case 0:
		return u.String() + " H"
	case 1:
		if other := g.Map().Region(to).Unit; other != nil {
			return u.String() + " S " + other.String()
		}
	case 2:
		for _, n := range adj {
			other := g.Map().Region(n).Unit
			if other == nil {
				continue
			}
			for _, dst := range g.Map().Region(n).Neighbors(other.Type) {
				if dst != loc && g.Map().Adjacent(u.Type, loc, dst) {
					return u.String() + " S " + other.String() + " - " + dst
				}
			}
		}
	}
	return u.String() + " - " + to
}

func FuzzParseOrder(f *testing.F) {
	for _, s := range []string{"A PAR - BUR", "F NTH C A LON - NWY", "A MUN S A BER - SIL", "WAIVE", "A PAR R GAS", ""} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, text string) {
		o, err := ParseOrder(text, France)
		if err != nil {
			return
		}
		again, err := ParseOrder(o.String(), France)
		if err != nil {
			t.Fatalf("canonical form %q of %q does not parse: %v", o.String(), text, err)
		}
		if again != o {
			t.Errorf("%q reparsed as %v, want %v", o.String(), again, o)
		}
	})
}
