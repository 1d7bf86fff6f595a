package diplomacy

import (
	"errors"
	"sort"
	"strings"
)

// Season represents a game season.
type Season string

const (
	Spring Season = "spring"
	Fall   Season = "fall"
)

// Title returns "Spring" or "Fall".
func (s Season) Title() string { return titleCase(string(s)) }

// Phase represents the type of game phase.
type Phase string

const (
	PhaseMovement   Phase = "movement"
	PhaseRetreat    Phase = "retreat"
	PhaseAdjustment Phase = "adjustment"
)

// Title returns "Movement", "Retreat" or "Adjustment".
func (p Phase) Title() string { return titleCase(string(p)) }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RejectedOrder is an order dropped during parsing or validation. Rejected
// orders never abort resolution; the unit simply holds or is left unordered.
type RejectedOrder struct {
	Power  Power  `json:"power"`
	Text   string `json:"order"`
	Reason string `json:"reason"`
}

// DislodgedUnit records a unit forced out of its region this phase.
type DislodgedUnit struct {
	Power          Power    `json:"power"`
	Unit           string   `json:"unit"`
	AttackerFrom   string   `json:"attacker_from"`
	RetreatOptions []string `json:"retreat_options"`
}

// PhaseResult is everything a ResolveOrders call decided.
type PhaseResult struct {
	Year      int             `json:"year"`
	Season    Season          `json:"season"`
	Phase     Phase           `json:"phase"`
	Outcomes  []OrderOutcome  `json:"outcomes"`
	Rejected  []RejectedOrder `json:"rejected,omitempty"`
	Dislodged []DislodgedUnit `json:"dislodged,omitempty"`
	State     State           `json:"state"`
}

// ResolveOrders adjudicates one phase. orders maps each power to its order
// texts; powers may be missing. Malformed or illegal orders are reported in
// the result and skipped. The game advances to its next phase on return.
func (g *Game) ResolveOrders(orders map[Power][]string) (*PhaseResult, error) {
	if g == nil || g.m == nil {
		return nil, ErrNoGame
	}
	if g.over {
		return nil, ErrGameOver
	}

	res := &PhaseResult{Year: g.year, Season: g.season, Phase: g.phase}
	accepted := g.acceptOrders(orders, res)

	var dislodged bool
	switch g.phase {
	case PhaseMovement:
		dislodged = g.resolveMovement(accepted, res)
	case PhaseRetreat:
		g.resolveRetreats(accepted, res)
	case PhaseAdjustment:
		g.resolveAdjustments(accepted, res)
	}

	g.log.Debug().
		Str("phase", g.PhaseName()).
		Int("accepted", len(accepted)).
		Int("rejected", len(res.Rejected)).
		Int("dislodged", len(res.Dislodged)).
		Msg("phase resolved")

	g.turn++
	g.updateEliminations()
	g.advance(dislodged)
	g.checkEnd(res.Phase == PhaseAdjustment)

	res.State = g.State()
	return res, nil
}

// acceptOrders parses and validates every submitted order, then drops orders
// that are inconsistent with the rest of the batch.
func (g *Game) acceptOrders(orders map[Power][]string, res *PhaseResult) []Order {
	powers := make([]Power, 0, len(orders))
	for p := range orders {
		powers = append(powers, p)
	}
	sort.Slice(powers, func(i, j int) bool {
		if pi, pj := powerIndex(powers[i]), powerIndex(powers[j]); pi != pj {
			return pi < pj
		}
		return powers[i] < powers[j]
	})

	var valid []Order
	for _, p := range powers {
		for _, text := range orders[p] {
			if strings.TrimSpace(text) == "" {
				continue
			}
			o, err := ParseOrder(text, p)
			if err == nil {
				err = g.ValidateOrder(o)
			}
			if err != nil {
				res.Rejected = append(res.Rejected, RejectedOrder{Power: p, Text: text, Reason: RejectReason(err)})
				g.log.Debug().Str("power", string(p)).Str("order", text).Err(err).Msg("order rejected")
				continue
			}
			valid = append(valid, o)
		}
	}
	return g.checkConsistency(valid, res)
}

// RejectReason extracts the human-readable reason from a parse or validation error.
func RejectReason(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}

// advance moves the clock: Movement, Retreat if needed, and after Fall the
// Adjustment phase, which rolls over into the next year's Spring.
func (g *Game) advance(hadDislodgements bool) {
	switch g.phase {
	case PhaseMovement:
		if hadDislodgements {
			g.phase = PhaseRetreat
			return
		}
		g.afterMovement()
	case PhaseRetreat:
		g.afterMovement()
	case PhaseAdjustment:
		g.year++
		g.season = Spring
		g.phase = PhaseMovement
	}
}

func (g *Game) afterMovement() {
	if g.season == Spring {
		g.season = Fall
		g.phase = PhaseMovement
		return
	}
	g.phase = PhaseAdjustment
}

// checkEnd ends the game when at most one power survives, and after
// adjustments also on victory or when the year limit is reached.
func (g *Game) checkEnd(afterAdjustment bool) {
	survivors := g.Survivors()
	switch len(survivors) {
	case 0:
		g.finish(nil, "no survivors")
		return
	case 1:
		g.finish(survivors, "last power standing")
		return
	}
	if !afterAdjustment {
		return
	}
	if winners := g.victory(g); len(winners) > 0 {
		g.finish(winners, "victory")
		return
	}
	if g.maxYears > 0 && g.year >= StartYear+g.maxYears {
		g.finish(nil, "year limit")
	}
}
