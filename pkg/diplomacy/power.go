package diplomacy

import (
	"fmt"
	"sort"
	"strings"
)

// Power represents one of the seven great powers.
type Power string

const (
	Austria Power = "austria"
	England Power = "england"
	France  Power = "france"
	Germany Power = "germany"
	Italy   Power = "italy"
	Russia  Power = "russia"
	Turkey  Power = "turkey"
	Neutral Power = ""
)

// AllPowers returns the seven great powers in standard order.
func AllPowers() []Power {
	return []Power{Austria, England, France, Germany, Italy, Russia, Turkey}
}

// ParsePower matches a power name case-insensitively.
func ParsePower(s string) (Power, error) {
	p := Power(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPowers() {
		if p == known {
			return p, nil
		}
	}
	return Neutral, fmt.Errorf("%w: %q", ErrUnknownPower, s)
}

// Title returns the capitalized display name, e.g. "France".
func (p Power) Title() string {
	if p == Neutral {
		return "None"
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

func powerIndex(p Power) int {
	for i, known := range AllPowers() {
		if p == known {
			return i
		}
	}
	return len(AllPowers())
}

// PowerState is one participating power: its units and the centers it controls.
type PowerState struct {
	Name        Power
	Units       []*Unit
	HomeCenters []string
	Centers     []string
	Eliminated  bool
}

// CountNeededBuilds returns controlled centers minus units. Positive means
// builds are allowed, negative means disbands are required.
func (p *PowerState) CountNeededBuilds() int {
	return len(p.Centers) - len(p.Units)
}

// Controls reports whether the power owns the named center.
func (p *PowerState) Controls(name string) bool {
	for _, c := range p.Centers {
		if c == name {
			return true
		}
	}
	return false
}

func (p *PowerState) addUnit(u *Unit) {
	p.Units = append(p.Units, u)
}

func (p *PowerState) removeUnit(u *Unit) {
	for i, existing := range p.Units {
		if existing == u {
			p.Units = append(p.Units[:i], p.Units[i+1:]...)
			return
		}
	}
}

func (p *PowerState) addCenter(name string) {
	if p.Controls(name) {
		return
	}
	p.Centers = append(p.Centers, name)
	sort.Strings(p.Centers)
}

func (p *PowerState) removeCenter(name string) {
	for i, c := range p.Centers {
		if c == name {
			p.Centers = append(p.Centers[:i], p.Centers[i+1:]...)
			return
		}
	}
}

// updateElimination marks the power eliminated once it holds neither
// units nor centers. Returns true if the power was newly eliminated.
func (p *PowerState) updateElimination() bool {
	if p.Eliminated || len(p.Units) > 0 || len(p.Centers) > 0 {
		return false
	}
	p.Eliminated = true
	return true
}
