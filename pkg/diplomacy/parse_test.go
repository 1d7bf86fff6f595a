package diplomacy

import (
	"errors"
	"testing"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in   string
		want Order
	}{
		{"A PAR H", Hold{France, UnitRef{Army, "PAR"}}},
		{"a par - bur", Move{France, UnitRef{Army, "PAR"}, "BUR"}},
		{"A PAR -> BUR", Move{France, UnitRef{Army, "PAR"}, "BUR"}},
		{"F NTH S A PAR", SupportHold{France, UnitRef{Fleet, "NTH"}, UnitRef{Army, "PAR"}}},
		{"F NTH S A PAR H", SupportHold{France, UnitRef{Fleet, "NTH"}, UnitRef{Army, "PAR"}}},
		{"A MUN S A BER - SIL", SupportMove{France, UnitRef{Army, "MUN"}, UnitRef{Army, "BER"}, "SIL"}},
		{"F NTH C A LON - NWY", Convoy{France, UnitRef{Fleet, "NTH"}, UnitRef{Army, "LON"}, "NWY"}},
		{"A PAR R GAS", Retreat{France, UnitRef{Army, "PAR"}, "GAS"}},
		{"F BRE B", Build{France, UnitRef{Fleet, "BRE"}}},
		{"A PAR D", Disband{France, UnitRef{Army, "PAR"}}},
		{"waive", Waive{France}},
		{"F NRG - NTH", Move{France, UnitRef{Fleet, "NWG"}, "NTH"}},
		{"  A   PAR   H  ", Hold{France, UnitRef{Army, "PAR"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrder(tt.in, France)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseOrderErrors(t *testing.T) {
	tests := []string{
		"",
		"A",
		"A PAR",
		"X PAR H",
		"A P4R H",
		"A PAR H NOW",
		"A PAR -",
		"A PAR - BUR GAS",
		"A PAR S",
		"A PAR S A",
		"A PAR S A MAR BUR",
		"A PAR S A MAR - ",
		"F NTH C A LON NWY",
		"F NTH C A LON - ",
		"A PAR R",
		"A PAR B NOW",
		"A PAR D NOW",
		"A PAR X",
		"WAIVE NOW",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			o, err := ParseOrder(in, England)
			if err == nil {
				t.Fatalf("expected error, got %v", o)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Text != in || pe.Reason == "" {
				t.Errorf("unexpected error contents %+v", pe)
			}
		})
	}
}

func TestParseOrderRoundTrip(t *testing.T) {
	canonical := []string{
		"A PAR H",
		"A PAR - BUR",
		"F NTH S A PAR",
		"A MUN S A BER - SIL",
		"F NTH C A LON - NWY",
		"A PAR R GAS",
		"F BRE B",
		"A PAR D",
		"WAIVE",
	}
	for _, text := range canonical {
		o, err := ParseOrder(text, Germany)
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		if o.String() != text {
			t.Errorf("round trip %q -> %q", text, o.String())
		}
		again, err := ParseOrder(o.String(), Germany)
		if err != nil || again != o {
			t.Errorf("reparse of %q gave %v, %v", o.String(), again, err)
		}
	}
}

func TestOrderKinds(t *testing.T) {
	tests := []struct {
		in   string
		kind OrderKind
	}{
		{"A PAR H", KindHold},
		{"A PAR - BUR", KindMove},
		{"F NTH S A PAR", KindSupportHold},
		{"A MUN S A BER - SIL", KindSupportMove},
		{"F NTH C A LON - NWY", KindConvoy},
		{"A PAR R GAS", KindRetreat},
		{"A PAR B", KindBuild},
		{"A PAR D", KindDisband},
		{"WAIVE", KindWaive},
	}
	for _, tt := range tests {
		o, err := ParseOrder(tt.in, Italy)
		if err != nil {
			t.Fatal(err)
		}
		if o.Kind() != tt.kind || o.Issuer() != Italy {
			t.Errorf("%q: kind %s issuer %s", tt.in, o.Kind(), o.Issuer())
		}
	}
}
