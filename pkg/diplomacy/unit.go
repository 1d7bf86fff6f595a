package diplomacy

import (
	"fmt"
	"strings"
)

// UnitType represents the type of a military unit.
type UnitType int

const (
	Army UnitType = iota
	Fleet
)

func (u UnitType) String() string {
	if u == Army {
		return "army"
	}
	return "fleet"
}

// Letter returns the single-letter order notation, "A" or "F".
func (u UnitType) Letter() string {
	if u == Army {
		return "A"
	}
	return "F"
}

// MarshalText encodes the type as "army" or "fleet".
func (u UnitType) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText accepts "army", "fleet", "A" or "F" in any case.
func (u *UnitType) UnmarshalText(b []byte) error {
	t, ok := ParseUnitType(string(b))
	if !ok {
		return fmt.Errorf("unknown unit type %q", string(b))
	}
	*u = t
	return nil
}

// ParseUnitType reads a unit type from its letter or full name.
func ParseUnitType(s string) (UnitType, bool) {
	switch strings.ToUpper(s) {
	case "A", "ARMY":
		return Army, true
	case "F", "FLEET":
		return Fleet, true
	}
	return 0, false
}

// Unit is a single military unit. Region always points at the region whose
// Unit (or, while dislodged, Dislodged) slot holds this unit.
type Unit struct {
	Type           UnitType
	Power          Power
	Region         *Region
	Dislodged      bool
	RetreatOptions []string
}

// Location returns the name of the unit's region, or "" if off the board.
func (u *Unit) Location() string {
	if u.Region == nil {
		return ""
	}
	return u.Region.Name
}

// Ref returns the order notation reference for this unit.
func (u *Unit) Ref() UnitRef {
	return UnitRef{Type: u.Type, Region: u.Location()}
}

// String renders the unit as "A PAR", prefixed with "*" while dislodged.
func (u *Unit) String() string {
	s := u.Type.Letter() + " " + u.Location()
	if u.Dislodged {
		return "*" + s
	}
	return s
}

// CanRetreatTo reports whether name is among the unit's retreat options.
func (u *Unit) CanRetreatTo(name string) bool {
	for _, opt := range u.RetreatOptions {
		if opt == name {
			return true
		}
	}
	return false
}
