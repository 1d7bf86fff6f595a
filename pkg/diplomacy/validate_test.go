package diplomacy

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateOrderOpening(t *testing.T) {
	g, err := NewGame()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		power Power
		order string
		want  string // substring of the reason; "" means valid
	}{
		{France, "A PAR - BUR", ""},
		{France, "A PAR H", ""},
		{France, "A PAR S A MAR - BUR", ""},
		{France, "F BRE - MAO", ""},
		{England, "F LON - NTH", ""},
		{France, "A PAR - MUN", "not adjacent"},
		{France, "F BRE - PAR", "fleet cannot move to inland region PAR"},
		{England, "A LVP - IRI", "army cannot move to sea region IRI"},
		{England, "A LON - NTH", "unit at LON is a fleet, not an army"},
		{France, "F LON - NTH", "belongs to england"},
		{France, "A PIC - BUR", "no unit at PIC"},
		{France, "A XYZ - BUR", "unknown region XYZ"},
		{France, "A PAR - XYZ", "unknown region XYZ"},
		{France, "A PAR R GAS", "not allowed in the movement phase"},
		{France, "A PAR B", "not allowed in the movement phase"},
		{France, "WAIVE", "not allowed in the movement phase"},
		{France, "A PAR D", "not allowed in the movement phase"},
		{Germany, "F KIE C A BER - DEN", "fleet must be at sea"},
		{France, "A PAR S A PAR", "cannot support itself"},
		{France, "A PAR S A MAR - SPA", "cannot reach SPA"},
		{France, "F BRE S A PAR", "cannot reach PAR"},
		{France, "A PAR S A MAR - PAR", "into its own region"},
		{France, "A PAR S F MAR", "unit at MAR is an army"},
		{France, "A PAR S A GAS", "no unit at GAS"},
		{Austria, "A VIE S A MUN - TYR", ""},
		{Austria, "A VIE S A MUN - SIL", "cannot reach SIL"},
	}
	for _, tt := range tests {
		t.Run(string(tt.power)+" "+tt.order, func(t *testing.T) {
			o, err := ParseOrder(tt.order, tt.power)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			err = g.ValidateOrder(o)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Reason, tt.want) {
				t.Errorf("reason %q does not contain %q", ve.Reason, tt.want)
			}
		})
	}
}

func TestValidateConvoy(t *testing.T) {
	g := newTestGame(t, Spring, PhaseMovement, position{
		England: {"F NTH", "A LON", "A YOR"},
		France:  {"F ENG", "A PIC"},
	})
	tests := []struct {
		power Power
		order string
		valid bool
	}{
		{England, "F NTH C A LON - NWY", true},
		{England, "A LON - NWY", true},
		{England, "A LON - BEL", true},
		{England, "F NTH C A YOR - DEN", true},
		{England, "A LON - TUN", false},
		{England, "F NTH C F LON - NWY", false},
		{England, "F NTH C A LON - MUN", false},
		{France, "F ENG C A PIC - LON", true},
		{France, "F ENG C A LON - BRE", true},
	}
	for _, tt := range tests {
		o, err := ParseOrder(tt.order, tt.power)
		if err != nil {
			t.Fatal(err)
		}
		if got := g.IsValid(o); got != tt.valid {
			t.Errorf("%s %q: valid=%v, want %v (%v)", tt.power, tt.order, got, tt.valid, g.ValidateOrder(o))
		}
	}
}

func TestConvoyPathReturnsChain(t *testing.T) {
	g := newTestGame(t, Spring, PhaseMovement, position{
		England: {"A LVP", "F IRI", "F MAO", "F WES"},
	})
	m := g.Map()
	path, ok := m.ConvoyPath(m.Region("LVP"), m.Region("TUN"), holdsFleet)
	if !ok {
		t.Fatal("expected a convoy path LVP to TUN")
	}
	want := []string{"IRI", "MAO", "WES"}
	if strings.Join(path, ",") != strings.Join(want, ",") {
		t.Errorf("path = %v, want %v", path, want)
	}
	if _, ok := m.ConvoyPath(m.Region("LVP"), m.Region("GRE"), holdsFleet); ok {
		t.Error("no fleets link LVP to GRE")
	}
	if _, ok := m.ConvoyPath(m.Region("MUN"), m.Region("TUN"), holdsFleet); ok {
		t.Error("inland regions cannot be convoyed from")
	}
}

func TestValidateRetreatAndAdjustment(t *testing.T) {
	g := newTestGame(t, Spring, PhaseRetreat, position{
		France:  {"*A BUR", "A PAR"},
		Germany: {"A MUN"},
	})
	g.Map().Region("BUR").Dislodged.RetreatOptions = []string{"GAS", "PIC"}

	valid := []string{"A BUR R GAS", "A BUR R PIC", "A BUR D"}
	for _, text := range valid {
		o, _ := ParseOrder(text, France)
		if err := g.ValidateOrder(o); err != nil {
			t.Errorf("%q: %v", text, err)
		}
	}
	invalid := []string{"A BUR R MAR", "A PAR R GAS", "A PAR - BUR", "A PAR D", "A PAR B"}
	for _, text := range invalid {
		o, _ := ParseOrder(text, France)
		if g.IsValid(o) {
			t.Errorf("%q should be invalid", text)
		}
	}

	adj := newTestGame(t, Fall, PhaseAdjustment, position{
		France:  {"A BUR"},
		Germany: {"A MUN", "A BER", "F KIE", "A HOL", "A BEL"},
	})
	setCenters(adj, Germany, "BER", "KIE", "MUN")
	tests := []struct {
		power Power
		order string
		want  string
	}{
		{France, "A PAR B", ""},
		{France, "F BRE B", ""},
		{France, "F MAR B", ""},
		{France, "WAIVE", ""},
		{France, "F PAR B", "fleets can only be built on the coast"},
		{France, "A BUR B", "not a home center"},
		{France, "A MUN B", "not a home center"},
		{France, "A BUR D", "no units to disband"},
		{Germany, "A MUN B", "is occupied"},
		{Germany, "A HOL D", ""},
		{Germany, "WAIVE", "no builds to waive"},
		{Germany, "A BUR D", "belongs to france"},
	}
	for _, tt := range tests {
		o, err := ParseOrder(tt.order, tt.power)
		if err != nil {
			t.Fatal(err)
		}
		err = adj.ValidateOrder(o)
		if tt.want == "" {
			if err != nil {
				t.Errorf("%s %q: %v", tt.power, tt.order, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s %q: got %v, want %q", tt.power, tt.order, err, tt.want)
		}
	}
}

func TestValidateBuildNeedsControl(t *testing.T) {
	g := newTestGame(t, Fall, PhaseAdjustment, position{
		France:  {"A BUR"},
		Germany: {"A MUN"},
	})
	setCenters(g, France, "BRE", "MAR", "SPA")
	setCenters(g, Germany, "MUN", "PAR")
	o, _ := ParseOrder("A PAR B", France)
	if err := g.ValidateOrder(o); err == nil || !strings.Contains(err.Error(), "no longer controls PAR") {
		t.Errorf("expected control error, got %v", err)
	}
}

func TestValidateUnknownPower(t *testing.T) {
	g, _ := NewGame(WithSeed(3))
	seats, err := g.SetupGame(3)
	if err != nil {
		t.Fatal(err)
	}
	playing := map[Power]bool{}
	for _, p := range seats {
		playing[p] = true
	}
	for _, p := range AllPowers() {
		if playing[p] {
			continue
		}
		o := Waive{Power: p}
		if err := g.ValidateOrder(o); err == nil || !strings.Contains(err.Error(), "is not playing") {
			t.Errorf("%s: expected not playing, got %v", p, err)
		}
		return
	}
}

func TestBatchConsistency(t *testing.T) {
	t.Run("support matches declared move", func(t *testing.T) {
		g, _ := NewGame()
		res := mustResolve(t, g, map[Power][]string{
			Germany: {"A MUN - TYR"},
			Austria: {"A VIE S A MUN - TYR"},
		})
		if len(res.Rejected) != 0 {
			t.Fatalf("unexpected rejections %+v", res.Rejected)
		}
		if got := outcomeFor(t, res, "VIE"); got.Result != ResultSucceeded {
			t.Errorf("support outcome %v", got.Result)
		}
		if occupant(g, "TYR") != "germany A TYR" {
			t.Errorf("TYR holds %q", occupant(g, "TYR"))
		}
	})
	t.Run("support without matching move", func(t *testing.T) {
		for _, munich := range [][]string{{"A MUN H"}, {"A MUN - BOH"}, nil} {
			g, _ := NewGame()
			res := mustResolve(t, g, map[Power][]string{
				Germany: munich,
				Austria: {"A VIE S A MUN - TYR"},
			})
			if len(res.Rejected) != 1 || res.Rejected[0].Power != Austria {
				t.Fatalf("munich %v: expected Austrian support rejected, got %+v", munich, res.Rejected)
			}
			if !strings.Contains(res.Rejected[0].Reason, "not ordered to move to TYR") {
				t.Errorf("reason %q", res.Rejected[0].Reason)
			}
		}
	})
	t.Run("support hold for moving unit", func(t *testing.T) {
		g, _ := NewGame()
		res := mustResolve(t, g, map[Power][]string{
			Germany: {"A MUN - RUH", "A BER S A MUN"},
		})
		if len(res.Rejected) != 1 || !strings.Contains(res.Rejected[0].Reason, "is ordered to move") {
			t.Errorf("unexpected rejections %+v", res.Rejected)
		}
	})
	t.Run("convoy without matching army move", func(t *testing.T) {
		g := newTestGame(t, Spring, PhaseMovement, position{England: {"F NTH", "A LON"}})
		res := mustResolve(t, g, map[Power][]string{
			England: {"F NTH C A LON - NWY", "A LON H"},
		})
		if len(res.Rejected) != 1 || !strings.Contains(res.Rejected[0].Reason, "not ordered to move to NWY") {
			t.Errorf("unexpected rejections %+v", res.Rejected)
		}
	})
	t.Run("duplicate order", func(t *testing.T) {
		g, _ := NewGame()
		res := mustResolve(t, g, map[Power][]string{
			France: {"A PAR - BUR", "A PAR - PIC"},
		})
		if len(res.Rejected) != 1 || !strings.Contains(res.Rejected[0].Reason, "duplicate order") {
			t.Fatalf("unexpected rejections %+v", res.Rejected)
		}
		if occupant(g, "BUR") != "france A BUR" {
			t.Errorf("first order should win, BUR holds %q", occupant(g, "BUR"))
		}
	})
	t.Run("malformed and illegal orders do not stop resolution", func(t *testing.T) {
		g, _ := NewGame()
		res := mustResolve(t, g, map[Power][]string{
			France:  {"gibberish", "A PAR - MUN", "A MAR - SPA"},
			England: {"F LON - NTH"},
		})
		if len(res.Rejected) != 2 {
			t.Fatalf("expected 2 rejections, got %+v", res.Rejected)
		}
		if occupant(g, "SPA") != "france A SPA" || occupant(g, "NTH") != "england F NTH" {
			t.Error("accepted orders should still resolve")
		}
	})
}
