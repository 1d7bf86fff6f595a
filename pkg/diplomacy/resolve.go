package diplomacy

import "sort"

type moveStatus int

const (
	moveActive  moveStatus = iota // succeeded
	moveBounced                   // failed at its destination but still blocks it
	moveVoid                      // no convoy route or lost a head-to-head; blocks nothing
)

type decisionState int

const (
	undecided decisionState = iota
	guessing
	decided
)

// pendingMove is a move order under adjudication.
type pendingMove struct {
	order    Move
	unit     *Unit
	from, to *Region
	convoyed bool // destination not adjacent, so a convoy chain is required

	state     decisionState
	ok        bool // the decision, or the current guess while guessing
	guessUsed bool
	paradox   bool // failed to break a convoy paradox

	status moveStatus
	note   string
}

// movementResolver adjudicates one movement phase by guess and check. Each
// move is decided on demand; a decision that depends on itself is first
// guessed to succeed, and the guess is kept only if resolving with it
// reproduces it. A support is given unless its supporter is dislodged by a
// unit other than the one it supports, and a convoy holds unless its fleet
// is dislodged, so both follow from the move decisions.
type movementResolver struct {
	g        *Game
	moves    map[*Unit]*pendingMove
	moveList []*pendingMove // by origin name
	targets  []*Region      // every move destination, by name
	byTarget map[*Region][]*pendingMove

	holdSupports map[*Unit][]*Unit // holding unit -> supporters
	moveSupports map[*Unit][]*Unit // moving unit -> supporters
	supporting   map[*Unit]*Unit   // supporter -> supported unit
	convoys      map[*pendingMove][]*Unit

	log []*pendingMove // decisions in the order they were made
}

func (g *Game) newMovementResolver(orders []Order) *movementResolver {
	r := &movementResolver{
		g:            g,
		moves:        make(map[*Unit]*pendingMove),
		byTarget:     make(map[*Region][]*pendingMove),
		holdSupports: make(map[*Unit][]*Unit),
		moveSupports: make(map[*Unit][]*Unit),
		supporting:   make(map[*Unit]*Unit),
		convoys:      make(map[*pendingMove][]*Unit),
	}
	m := g.m

	for _, o := range orders {
		mv, ok := o.(Move)
		if !ok {
			continue
		}
		u := m.Region(mv.Unit.Region).Unit
		to := m.Region(mv.To)
		pm := &pendingMove{
			order:    mv,
			unit:     u,
			from:     u.Region,
			to:       to,
			convoyed: !u.Region.IsAdjacent(u.Type, to.Name),
		}
		r.moves[u] = pm
		r.moveList = append(r.moveList, pm)
		if _, seen := r.byTarget[to]; !seen {
			r.targets = append(r.targets, to)
		}
		r.byTarget[to] = append(r.byTarget[to], pm)
	}
	sort.Slice(r.moveList, func(i, j int) bool { return r.moveList[i].from.Name < r.moveList[j].from.Name })
	sort.Slice(r.targets, func(i, j int) bool { return r.targets[i].Name < r.targets[j].Name })

	for _, o := range orders {
		switch o := o.(type) {
		case SupportHold:
			supporter := m.Region(o.Unit.Region).Unit
			supported := m.Region(o.Supported.Region).Unit
			r.holdSupports[supported] = append(r.holdSupports[supported], supporter)
			r.supporting[supporter] = supported
		case SupportMove:
			supporter := m.Region(o.Unit.Region).Unit
			supported := m.Region(o.Supported.Region).Unit
			r.moveSupports[supported] = append(r.moveSupports[supported], supporter)
			r.supporting[supporter] = supported
		case Convoy:
			fleet := m.Region(o.Unit.Region).Unit
			army := m.Region(o.Army.Region).Unit
			if pm := r.moves[army]; pm != nil && pm.convoyed {
				r.convoys[pm] = append(r.convoys[pm], fleet)
			}
		}
	}
	return r
}

// resolve decides every move and returns each dislodged unit with the move
// that dislodged it.
func (r *movementResolver) resolve() map[*Unit]*pendingMove {
	for _, pm := range r.moveList {
		r.decide(pm)
	}
	dislodged := make(map[*Unit]*pendingMove)
	for _, pm := range r.moveList {
		pm.status, pm.note = r.explain(pm)
		if !pm.ok {
			continue
		}
		if d := pm.to.Unit; d != nil && !r.leaving(d) {
			dislodged[d] = pm
		}
	}
	return dislodged
}

// decide returns whether pm succeeds. A move caught in its own dependency
// cycle is guessed to succeed, then to fail. If neither guess reproduces
// itself the cycle is a paradox.
func (r *movementResolver) decide(pm *pendingMove) bool {
	switch pm.state {
	case decided:
		return pm.ok
	case guessing:
		pm.guessUsed = true
		return pm.ok
	}

	mark := len(r.log)
	pm.state, pm.ok, pm.guessUsed = guessing, true, false
	first := r.resolveMove(pm)
	if !pm.guessUsed || first == pm.ok {
		return r.record(pm, first)
	}

	r.rewind(mark)
	pm.ok, pm.guessUsed = first, false
	second := r.resolveMove(pm)
	if !pm.guessUsed || second == pm.ok {
		return r.record(pm, second)
	}

	// Neither guess holds. Convoys caught in the cycle fail, and pm is
	// decided again without them; with no convoy involved pm fails.
	var convoyed []*pendingMove
	for _, q := range r.log[mark:] {
		if q.convoyed {
			convoyed = append(convoyed, q)
		}
	}
	r.rewind(mark)
	if pm.convoyed || len(convoyed) == 0 {
		r.g.log.Debug().Str("move", pm.order.String()).Msg("paradox, move fails")
		pm.paradox = pm.convoyed
		return r.record(pm, false)
	}
	for _, q := range convoyed {
		r.g.log.Debug().Str("move", q.order.String()).Msg("convoy paradox, move fails")
		q.paradox = true
		r.record(q, false)
	}
	pm.state = undecided
	return r.decide(pm)
}

func (r *movementResolver) record(pm *pendingMove, ok bool) bool {
	pm.state, pm.ok = decided, ok
	r.log = append(r.log, pm)
	return ok
}

// rewind forgets every decision made since mark; they rested on a guess
// that turned out wrong.
func (r *movementResolver) rewind(mark int) {
	for _, pm := range r.log[mark:] {
		pm.state, pm.paradox = undecided, false
	}
	r.log = r.log[:mark]
}

func (r *movementResolver) resolveMove(pm *pendingMove) bool {
	if pm.convoyed && !r.hasConvoyRoute(pm) {
		return false
	}
	attack := r.attackStrength(pm)
	if opp := r.opponent(pm); opp != nil {
		if attack <= r.supportedStrength(opp) {
			return false
		}
	} else if attack <= r.holdStrength(pm.to) {
		return false
	}
	for _, other := range r.byTarget[pm.to] {
		if other != pm && attack <= r.preventStrength(other) {
			return false
		}
	}
	return true
}

// hasConvoyRoute checks for a chain of fleets carrying this army that are
// not dislodged.
func (r *movementResolver) hasConvoyRoute(pm *pendingMove) bool {
	carriers := make(map[*Region]bool)
	for _, f := range r.convoys[pm] {
		if !r.attacked(f, nil) {
			carriers[f.Region] = true
		}
	}
	if len(carriers) == 0 {
		return false
	}
	_, ok := r.g.m.ConvoyPath(pm.from, pm.to, func(reg *Region) bool { return carriers[reg] })
	return ok
}

// attacked reports whether a stationary unit u is dislodged by any move
// other than one made by except.
func (r *movementResolver) attacked(u *Unit, except *Unit) bool {
	for _, pm := range r.byTarget[u.Region] {
		if pm.unit != except && r.decide(pm) {
			return true
		}
	}
	return false
}

func (r *movementResolver) supportGiven(supporter *Unit) bool {
	return !r.attacked(supporter, r.supporting[supporter])
}

// supportCut reports whether u gave a support that was cut.
func (r *movementResolver) supportCut(u *Unit) bool {
	_, ok := r.supporting[u]
	return ok && !r.supportGiven(u)
}

// leaving reports whether u moves out successfully.
func (r *movementResolver) leaving(u *Unit) bool {
	pm := r.moves[u]
	return pm != nil && r.decide(pm)
}

// opponent returns the move coming straight back along pm's path, if any.
// Convoyed moves never meet head to head.
func (r *movementResolver) opponent(pm *pendingMove) *pendingMove {
	if pm.convoyed || pm.to.Unit == nil {
		return nil
	}
	opp := r.moves[pm.to.Unit]
	if opp == nil || opp.convoyed || opp.to != pm.from {
		return nil
	}
	return opp
}

func (r *movementResolver) supportedStrength(pm *pendingMove) int {
	s := 1
	for _, supporter := range r.moveSupports[pm.unit] {
		if r.supportGiven(supporter) {
			s++
		}
	}
	return s
}

// attackStrength is zero against a unit of the mover's own power that
// stays put.
func (r *movementResolver) attackStrength(pm *pendingMove) int {
	if d := pm.to.Unit; d != nil && d.Power == pm.unit.Power {
		if r.opponent(pm) != nil || !r.leaving(d) {
			return 0
		}
	}
	return r.supportedStrength(pm)
}

// holdStrength is the defence of a region. A unit that moves away gives
// none, and a unit whose own move failed gets no hold support.
func (r *movementResolver) holdStrength(region *Region) int {
	u := region.Unit
	if u == nil {
		return 0
	}
	if pm := r.moves[u]; pm != nil {
		if r.decide(pm) {
			return 0
		}
		return 1
	}
	s := 1
	for _, supporter := range r.holdSupports[u] {
		if r.supportGiven(supporter) {
			s++
		}
	}
	return s
}

// preventStrength is how hard pm keeps others out of its destination.
func (r *movementResolver) preventStrength(pm *pendingMove) int {
	if pm.paradox || pm.convoyed && !r.hasConvoyRoute(pm) {
		return 0
	}
	if opp := r.opponent(pm); opp != nil && r.decide(opp) {
		return 0
	}
	return r.supportedStrength(pm)
}

// explain classifies a decided move for its outcome.
func (r *movementResolver) explain(pm *pendingMove) (moveStatus, string) {
	if pm.ok {
		return moveActive, ""
	}
	if pm.paradox {
		return moveVoid, "convoy paradox"
	}
	if pm.convoyed && !r.hasConvoyRoute(pm) {
		return moveVoid, "no convoy route"
	}
	if opp := r.opponent(pm); opp != nil {
		switch own, theirs := r.supportedStrength(pm), r.supportedStrength(opp); {
		case r.decide(opp) || own < theirs:
			return moveVoid, "lost head-to-head"
		case own == theirs:
			return moveVoid, "head-to-head standoff"
		}
	}
	if d := pm.to.Unit; d != nil && d.Power == pm.unit.Power && !r.leaving(d) &&
		r.supportedStrength(pm) > r.holdStrength(pm.to) {
		return moveBounced, "cannot dislodge own unit"
	}
	return moveBounced, "bounced"
}

// resolveMovement adjudicates a movement phase, applies the outcome and
// reports whether any unit was dislodged.
func (g *Game) resolveMovement(orders []Order, res *PhaseResult) bool {
	r := g.newMovementResolver(orders)
	dislodged := r.resolve()

	for _, o := range orders {
		u := g.m.Region(o.(UnitOrder).Subject().Region).Unit
		result, note := ResultSucceeded, ""
		switch o.(type) {
		case Move:
			pm := r.moves[u]
			switch pm.status {
			case moveBounced:
				result, note = ResultBounced, pm.note
			case moveVoid:
				// Convoyed moves never meet head to head, so a void one
				// has no route or broke a paradox.
				result, note = ResultFailed, pm.note
				if !pm.convoyed {
					result = ResultBounced
				}
			}
		case SupportHold, SupportMove:
			if r.supportCut(u) {
				result, note = ResultCut, "support cut"
			}
		case Convoy:
			if r.attacked(u, nil) {
				result, note = ResultFailed, "convoy disrupted"
			}
		}
		if by, ok := dislodged[u]; ok {
			result, note = ResultDislodged, "dislodged from "+by.from.Name
		}
		res.Outcomes = append(res.Outcomes, newOutcome(o, result, note))
	}

	// Buffer everything, then apply in one pass.
	relocations := make(map[*Unit]*Region)
	for _, pm := range r.moveList {
		if pm.status == moveActive {
			relocations[pm.unit] = pm.to
		}
	}
	dislodgedUnits := make([]*Unit, 0, len(dislodged))
	for u := range dislodged {
		dislodgedUnits = append(dislodgedUnits, u)
	}
	sort.Slice(dislodgedUnits, func(i, j int) bool { return dislodgedUnits[i].Location() < dislodgedUnits[j].Location() })

	for _, u := range dislodgedUnits {
		g.m.dislodge(u)
	}
	g.m.relocate(relocations)

	if g.season == Fall {
		g.updateOwnership()
	}

	standoffs := make(map[*Region]bool)
	for _, target := range r.targets {
		if target.Vacant() {
			for _, pm := range r.byTarget[target] {
				if pm.status == moveBounced {
					standoffs[target] = true
				}
			}
		}
	}
	for _, u := range dislodgedUnits {
		attackerFrom := dislodged[u].from
		u.RetreatOptions = nil
		for _, name := range u.Region.Neighbors(u.Type) {
			dst := g.m.regions[name]
			if dst.Vacant() && dst != attackerFrom && !standoffs[dst] {
				u.RetreatOptions = append(u.RetreatOptions, name)
			}
		}
		res.Dislodged = append(res.Dislodged, DislodgedUnit{
			Power:          u.Power,
			Unit:           u.Type.Letter() + " " + u.Location(),
			AttackerFrom:   attackerFrom.Name,
			RetreatOptions: append([]string(nil), u.RetreatOptions...),
		})
	}
	return len(dislodgedUnits) > 0
}

// updateOwnership hands every occupied supply center to the occupying power.
func (g *Game) updateOwnership() {
	for _, name := range g.m.SupplyCenters() {
		r := g.m.regions[name]
		if r.Unit == nil || r.Unit.Power == r.Owner {
			continue
		}
		if prev := g.powers[r.Owner]; prev != nil {
			prev.removeCenter(name)
		}
		if next := g.powers[r.Unit.Power]; next != nil {
			next.addCenter(name)
		}
		g.log.Debug().Str("center", name).Str("from", string(r.Owner)).Str("to", string(r.Unit.Power)).Msg("center captured")
		r.Owner = r.Unit.Power
	}
}
