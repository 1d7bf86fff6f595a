package diplomacy

import "fmt"

// ValidationError describes why an order is invalid.
type ValidationError struct {
	Order  Order
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Order == nil {
		return "invalid order: " + e.Reason
	}
	return fmt.Sprintf("invalid order %s: %s", e.Order, e.Reason)
}

// IsValid reports whether ValidateOrder accepts o.
func (g *Game) IsValid(o Order) bool {
	return g.ValidateOrder(o) == nil
}

// ValidateOrder checks one order against the current board and phase.
// Returns nil if legal, or a *ValidationError naming the problem. Rules
// that depend on other orders in the same batch are applied by ResolveOrders.
func (g *Game) ValidateOrder(o Order) error {
	if g == nil || g.m == nil {
		return ErrNoGame
	}
	if g.over {
		return ErrGameOver
	}
	if o == nil {
		return &ValidationError{Reason: "missing order"}
	}
	if reason := g.validate(o); reason != "" {
		return &ValidationError{Order: o, Reason: reason}
	}
	return nil
}

func (g *Game) validate(o Order) string {
	ps := g.powers[o.Issuer()]
	if ps == nil {
		return fmt.Sprintf("%s is not playing", o.Issuer())
	}
	if reason := g.checkPhase(o); reason != "" {
		return reason
	}

	switch o := o.(type) {
	case Hold:
		_, reason := g.ownUnit(o.Power, o.Unit, false)
		return reason
	case Move:
		return g.validateMove(o)
	case SupportHold:
		return g.validateSupportHold(o)
	case SupportMove:
		return g.validateSupportMove(o)
	case Convoy:
		return g.validateConvoy(o)
	case Retreat:
		u, reason := g.ownUnit(o.Power, o.Unit, true)
		if reason != "" {
			return reason
		}
		if dst := g.m.Region(o.To); dst == nil || !u.CanRetreatTo(dst.Name) {
			return fmt.Sprintf("%s is not a legal retreat for %s", o.To, u)
		}
		return ""
	case Build:
		return g.validateBuild(ps, o)
	case Disband:
		if g.phase == PhaseRetreat {
			_, reason := g.ownUnit(o.Power, o.Unit, true)
			return reason
		}
		if ps.CountNeededBuilds() >= 0 {
			return fmt.Sprintf("%s has no units to disband", o.Power)
		}
		_, reason := g.ownUnit(o.Power, o.Unit, false)
		return reason
	case Waive:
		if ps.CountNeededBuilds() <= 0 {
			return fmt.Sprintf("%s has no builds to waive", o.Power)
		}
		return ""
	}
	return "unknown order kind"
}

// checkPhase enforces which order kinds each phase accepts.
func (g *Game) checkPhase(o Order) string {
	ok := false
	switch o.Kind() {
	case KindHold, KindMove, KindSupportHold, KindSupportMove, KindConvoy:
		ok = g.phase == PhaseMovement
	case KindRetreat:
		ok = g.phase == PhaseRetreat
	case KindBuild, KindWaive:
		ok = g.phase == PhaseAdjustment
	case KindDisband:
		ok = g.phase == PhaseRetreat || g.phase == PhaseAdjustment
	}
	if !ok {
		return fmt.Sprintf("%s orders are not allowed in the %s phase", o.Kind(), g.phase)
	}
	return ""
}

// ownUnit finds the unit an order names and checks type and ownership.
// With dislodged set it looks in the region's dislodged slot instead.
func (g *Game) ownUnit(p Power, ref UnitRef, dislodged bool) (*Unit, string) {
	r := g.m.Region(ref.Region)
	if r == nil {
		return nil, "unknown region " + ref.Region
	}
	u := r.Unit
	if dislodged {
		u = r.Dislodged
	}
	if u == nil {
		if dislodged {
			return nil, "no dislodged unit at " + r.Name
		}
		return nil, "no unit at " + r.Name
	}
	if u.Type != ref.Type {
		return nil, fmt.Sprintf("unit at %s is %s %s, not %s", r.Name, article(u.Type), u.Type, article(ref.Type)+" "+ref.Type.String())
	}
	if u.Power != p {
		return nil, fmt.Sprintf("unit at %s belongs to %s", r.Name, u.Power)
	}
	return u, ""
}

// unitAt finds any power's unit at a region and checks its type.
func (g *Game) unitAt(ref UnitRef) (*Unit, string) {
	r := g.m.Region(ref.Region)
	if r == nil {
		return nil, "unknown region " + ref.Region
	}
	if r.Unit == nil {
		return nil, "no unit at " + r.Name
	}
	if r.Unit.Type != ref.Type {
		return nil, fmt.Sprintf("unit at %s is %s %s", r.Name, article(r.Unit.Type), r.Unit.Type)
	}
	return r.Unit, ""
}

func article(t UnitType) string {
	if t == Army {
		return "an"
	}
	return "a"
}

// canReach reports whether u could move to dst this phase, directly or,
// for an army, through a chain of fleets currently on the board.
func (g *Game) canReach(u *Unit, dst *Region) bool {
	if u.Region.IsAdjacent(u.Type, dst.Name) {
		return true
	}
	if u.Type != Army {
		return false
	}
	_, ok := g.m.ConvoyPath(u.Region, dst, holdsFleet)
	return ok
}

func (g *Game) validateMove(o Move) string {
	u, reason := g.ownUnit(o.Power, o.Unit, false)
	if reason != "" {
		return reason
	}
	dst := g.m.Region(o.To)
	switch {
	case dst == nil:
		return "unknown region " + o.To
	case dst == u.Region:
		return "unit cannot move to its own region"
	case u.Type == Army && dst.Terrain == Sea:
		return "army cannot move to sea region " + dst.Name
	case u.Type == Fleet && dst.Terrain == Land:
		return "fleet cannot move to inland region " + dst.Name
	}
	if g.canReach(u, dst) {
		return ""
	}
	if u.Type == Army {
		return fmt.Sprintf("%s is not adjacent to %s and no convoy route exists", dst.Name, u.Location())
	}
	return fmt.Sprintf("%s is not adjacent to %s", dst.Name, u.Location())
}

func (g *Game) validateSupportHold(o SupportHold) string {
	u, reason := g.ownUnit(o.Power, o.Unit, false)
	if reason != "" {
		return reason
	}
	su, reason := g.unitAt(o.Supported)
	if reason != "" {
		return reason
	}
	if su == u {
		return "unit cannot support itself"
	}
	if !u.Region.IsAdjacent(u.Type, su.Location()) {
		return fmt.Sprintf("%s cannot reach %s to support it", u, su.Location())
	}
	return ""
}

func (g *Game) validateSupportMove(o SupportMove) string {
	u, reason := g.ownUnit(o.Power, o.Unit, false)
	if reason != "" {
		return reason
	}
	su, reason := g.unitAt(o.Supported)
	if reason != "" {
		return reason
	}
	dst := g.m.Region(o.To)
	switch {
	case su == u:
		return "unit cannot support itself"
	case dst == nil:
		return "unknown region " + o.To
	case dst == u.Region:
		return "unit cannot support a move into its own region"
	case dst == su.Region:
		return "supported unit cannot move to its own region"
	}
	if !u.Region.IsAdjacent(u.Type, dst.Name) {
		return fmt.Sprintf("%s cannot reach %s to support a move there", u, dst.Name)
	}
	if !g.canReach(su, dst) {
		return fmt.Sprintf("%s cannot reach %s", su, dst.Name)
	}
	return ""
}

func (g *Game) validateConvoy(o Convoy) string {
	u, reason := g.ownUnit(o.Power, o.Unit, false)
	if reason != "" {
		return reason
	}
	if u.Type != Fleet {
		return "only fleets can convoy"
	}
	if u.Region.Terrain != Sea {
		return "fleet must be at sea to convoy"
	}
	if o.Army.Type != Army {
		return "only armies can be convoyed"
	}
	army, reason := g.unitAt(o.Army)
	if reason != "" {
		return reason
	}
	dst := g.m.Region(o.To)
	switch {
	case dst == nil:
		return "unknown region " + o.To
	case army.Region.Terrain != Coast:
		return "convoyed army must be on the coast"
	case dst.Terrain != Coast:
		return "convoy destination must be on the coast"
	case dst == army.Region:
		return "convoyed army cannot move to its own region"
	}
	// The fleet must border the army, or be joined to it by other fleets.
	if !g.m.seaLinked(army.Region, u.Region, holdsFleet) {
		return fmt.Sprintf("%s is not linked to %s by sea", u, army.Location())
	}
	if !g.m.seaLinked(dst, u.Region, holdsFleet) {
		return fmt.Sprintf("%s is not linked to %s by sea", u, dst.Name)
	}
	return ""
}

func (g *Game) validateBuild(ps *PowerState, o Build) string {
	r := g.m.Region(o.Unit.Region)
	switch {
	case r == nil:
		return "unknown region " + o.Unit.Region
	case !r.IsSupplyCenter || r.HomeOf != o.Power:
		return fmt.Sprintf("%s is not a home center of %s", r.Name, o.Power)
	case r.Owner != o.Power:
		return fmt.Sprintf("%s no longer controls %s", o.Power, r.Name)
	case !r.Vacant():
		return r.Name + " is occupied"
	case o.Unit.Type == Fleet && r.Terrain != Coast:
		return "fleets can only be built on the coast"
	case ps.CountNeededBuilds() <= 0:
		return fmt.Sprintf("%s has no builds available", o.Power)
	}
	return ""
}

// checkConsistency drops orders that conflict with the rest of the batch:
// second orders for a unit, supports that do not match the supported
// unit's own order, and convoys for armies not ordered along that convoy.
func (g *Game) checkConsistency(orders []Order, res *PhaseResult) []Order {
	reject := func(o Order, reason string) {
		res.Rejected = append(res.Rejected, RejectedOrder{Power: o.Issuer(), Text: o.String(), Reason: reason})
		g.log.Debug().Str("power", string(o.Issuer())).Str("order", o.String()).Str("reason", reason).Msg("order dropped")
	}

	bySubject := make(map[string]Order, len(orders))
	unique := make([]Order, 0, len(orders))
	for _, o := range orders {
		if uo, ok := o.(UnitOrder); ok {
			key := uo.Subject().Region
			if _, dup := bySubject[key]; dup {
				reject(o, "duplicate order for unit at "+key)
				continue
			}
			bySubject[key] = o
		}
		unique = append(unique, o)
	}
	if g.phase != PhaseMovement {
		return unique
	}

	out := make([]Order, 0, len(unique))
	for _, o := range unique {
		switch o := o.(type) {
		case SupportHold:
			if mv, ok := bySubject[o.Supported.Region].(Move); ok {
				reject(o, fmt.Sprintf("unit at %s is ordered to move to %s", o.Supported.Region, mv.To))
				continue
			}
		case SupportMove:
			if mv, ok := bySubject[o.Supported.Region].(Move); !ok || mv.To != o.To {
				reject(o, fmt.Sprintf("unit at %s is not ordered to move to %s", o.Supported.Region, o.To))
				continue
			}
		case Convoy:
			if mv, ok := bySubject[o.Army.Region].(Move); !ok || mv.To != o.To {
				reject(o, fmt.Sprintf("army at %s is not ordered to move to %s", o.Army.Region, o.To))
				continue
			}
		}
		out = append(out, o)
	}
	return out
}
