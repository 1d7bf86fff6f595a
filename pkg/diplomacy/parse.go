package diplomacy

import (
	"fmt"
	"strings"
)

// ParseError reports order text that does not match the order grammar.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse order %q: %s", e.Text, e.Reason)
}

// ParseOrder reads one order in standard notation for the given power.
//
//	A PAR H                 hold
//	A PAR - BUR             move
//	A MUN S A BER [H]       support hold
//	A MUN S A BER - SIL     support move
//	F NTH C A LON - NWY     convoy
//	A PAR R GAS             retreat
//	A PAR B                 build
//	A PAR D                 disband
//	WAIVE                   waive a build
//
// Tokens are case-insensitive and "->" is accepted for "-". Region names are
// checked for shape only; whether they exist is decided by validation.
func ParseOrder(text string, power Power) (Order, error) {
	fail := func(reason string) (Order, error) {
		return nil, &ParseError{Text: text, Reason: reason}
	}

	fields := strings.Fields(strings.ToUpper(text))
	for i, f := range fields {
		if f == "->" {
			fields[i] = "-"
		}
	}
	if len(fields) == 0 {
		return fail("empty order")
	}
	if len(fields) == 1 && fields[0] == "WAIVE" {
		return Waive{Power: power}, nil
	}
	if len(fields) < 3 {
		return fail("expected unit type, region and action")
	}

	unit, reason := parseUnitRef(fields[0], fields[1])
	if reason != "" {
		return fail(reason)
	}
	action, rest := fields[2], fields[3:]

	switch action {
	case "H":
		if len(rest) != 0 {
			return fail("unexpected text after hold")
		}
		return Hold{Power: power, Unit: unit}, nil

	case "-":
		if len(rest) != 1 {
			return fail("move needs exactly one destination")
		}
		to, reason := parseRegion(rest[0])
		if reason != "" {
			return fail(reason)
		}
		return Move{Power: power, Unit: unit, To: to}, nil

	case "S":
		if len(rest) < 2 {
			return fail("support needs a unit type and region")
		}
		supported, reason := parseUnitRef(rest[0], rest[1])
		if reason != "" {
			return fail(reason)
		}
		switch {
		case len(rest) == 2, len(rest) == 3 && rest[2] == "H":
			return SupportHold{Power: power, Unit: unit, Supported: supported}, nil
		case len(rest) == 4 && rest[2] == "-":
			to, reason := parseRegion(rest[3])
			if reason != "" {
				return fail(reason)
			}
			return SupportMove{Power: power, Unit: unit, Supported: supported, To: to}, nil
		}
		return fail("support must end with H, nothing, or - DEST")

	case "C":
		if len(rest) != 4 || rest[2] != "-" {
			return fail("convoy must read C A ORIGIN - DEST")
		}
		army, reason := parseUnitRef(rest[0], rest[1])
		if reason != "" {
			return fail(reason)
		}
		to, reason := parseRegion(rest[3])
		if reason != "" {
			return fail(reason)
		}
		return Convoy{Power: power, Unit: unit, Army: army, To: to}, nil

	case "R":
		if len(rest) != 1 {
			return fail("retreat needs exactly one destination")
		}
		to, reason := parseRegion(rest[0])
		if reason != "" {
			return fail(reason)
		}
		return Retreat{Power: power, Unit: unit, To: to}, nil

	case "B":
		if len(rest) != 0 {
			return fail("unexpected text after build")
		}
		return Build{Power: power, Unit: unit}, nil

	case "D":
		if len(rest) != 0 {
			return fail("unexpected text after disband")
		}
		return Disband{Power: power, Unit: unit}, nil
	}
	return fail("unknown action " + action)
}

func parseUnitRef(typ, region string) (UnitRef, string) {
	if typ != "A" && typ != "F" {
		return UnitRef{}, "unit type must be A or F, got " + typ
	}
	t, _ := ParseUnitType(typ)
	name, reason := parseRegion(region)
	if reason != "" {
		return UnitRef{}, reason
	}
	return UnitRef{Type: t, Region: name}, ""
}

// parseRegion checks the token is alphabetic and maps known aliases.
func parseRegion(tok string) (string, string) {
	if tok == "" {
		return "", "missing region"
	}
	for _, c := range tok {
		if c < 'A' || c > 'Z' {
			return "", "malformed region " + tok
		}
	}
	if canon, ok := regionAliases[tok]; ok {
		return canon, ""
	}
	return tok, ""
}
