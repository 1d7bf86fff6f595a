package diplomacy

// OrderKind identifies which of the order variants an Order is.
type OrderKind int

const (
	KindHold        OrderKind = iota // Unit holds position
	KindMove                         // Unit moves to an adjacent region or by convoy
	KindSupportHold                  // Unit supports another unit staying put
	KindSupportMove                  // Unit supports another unit's move
	KindConvoy                       // Fleet carries an army across sea
	KindRetreat                      // Dislodged unit retreats
	KindBuild                        // New unit at a home center
	KindDisband                      // Unit removed from the board
	KindWaive                        // Unused build allowance
)

func (k OrderKind) String() string {
	switch k {
	case KindHold:
		return "hold"
	case KindMove:
		return "move"
	case KindSupportHold:
		return "support-hold"
	case KindSupportMove:
		return "support-move"
	case KindConvoy:
		return "convoy"
	case KindRetreat:
		return "retreat"
	case KindBuild:
		return "build"
	case KindDisband:
		return "disband"
	case KindWaive:
		return "waive"
	default:
		return "unknown"
	}
}

// Order is one instruction issued by a power. The concrete types below are
// the only implementations.
type Order interface {
	Kind() OrderKind
	Issuer() Power
	String() string
	isOrder()
}

// UnitOrder is an Order aimed at a single unit (or, for builds, a single region).
type UnitOrder interface {
	Order
	Subject() UnitRef
}

// UnitRef names a unit in order notation: its type and region.
type UnitRef struct {
	Type   UnitType
	Region string
}

func (u UnitRef) String() string {
	return u.Type.Letter() + " " + u.Region
}

// Hold keeps the unit in place: "A PAR H".
type Hold struct {
	Power Power
	Unit  UnitRef
}

// Move sends the unit to another region: "A PAR - BUR".
type Move struct {
	Power Power
	Unit  UnitRef
	To    string
}

// SupportHold backs a unit that stays put: "A MUN S A BER" or "A MUN S A BER H".
type SupportHold struct {
	Power     Power
	Unit      UnitRef
	Supported UnitRef
}

// SupportMove backs another unit's move: "A MUN S A BER - SIL".
type SupportMove struct {
	Power     Power
	Unit      UnitRef
	Supported UnitRef
	To        string
}

// Convoy carries an army through a sea region: "F NTH C A LON - NWY".
type Convoy struct {
	Power Power
	Unit  UnitRef
	Army  UnitRef
	To    string
}

// Retreat moves a dislodged unit: "A PAR R GAS".
type Retreat struct {
	Power Power
	Unit  UnitRef
	To    string
}

// Build creates a unit at a home center: "A PAR B".
type Build struct {
	Power Power
	Unit  UnitRef
}

// Disband removes a unit: "A PAR D".
type Disband struct {
	Power Power
	Unit  UnitRef
}

// Waive declines one build: "WAIVE".
type Waive struct {
	Power Power
}

func (Hold) Kind() OrderKind        { return KindHold }
func (Move) Kind() OrderKind        { return KindMove }
func (SupportHold) Kind() OrderKind { return KindSupportHold }
func (SupportMove) Kind() OrderKind { return KindSupportMove }
func (Convoy) Kind() OrderKind      { return KindConvoy }
func (Retreat) Kind() OrderKind     { return KindRetreat }
func (Build) Kind() OrderKind       { return KindBuild }
func (Disband) Kind() OrderKind     { return KindDisband }
func (Waive) Kind() OrderKind       { return KindWaive }

func (o Hold) Issuer() Power        { return o.Power }
func (o Move) Issuer() Power        { return o.Power }
func (o SupportHold) Issuer() Power { return o.Power }
func (o SupportMove) Issuer() Power { return o.Power }
func (o Convoy) Issuer() Power      { return o.Power }
func (o Retreat) Issuer() Power     { return o.Power }
func (o Build) Issuer() Power       { return o.Power }
func (o Disband) Issuer() Power     { return o.Power }
func (o Waive) Issuer() Power       { return o.Power }

func (o Hold) Subject() UnitRef        { return o.Unit }
func (o Move) Subject() UnitRef        { return o.Unit }
func (o SupportHold) Subject() UnitRef { return o.Unit }
func (o SupportMove) Subject() UnitRef { return o.Unit }
func (o Convoy) Subject() UnitRef      { return o.Unit }
func (o Retreat) Subject() UnitRef     { return o.Unit }
func (o Build) Subject() UnitRef       { return o.Unit }
func (o Disband) Subject() UnitRef     { return o.Unit }

func (o Hold) String() string { return o.Unit.String() + " H" }
func (o Move) String() string { return o.Unit.String() + " - " + o.To }
func (o SupportHold) String() string {
	return o.Unit.String() + " S " + o.Supported.String()
}
func (o SupportMove) String() string {
	return o.Unit.String() + " S " + o.Supported.String() + " - " + o.To
}
func (o Convoy) String() string {
	return o.Unit.String() + " C " + o.Army.String() + " - " + o.To
}
func (o Retreat) String() string { return o.Unit.String() + " R " + o.To }
func (o Build) String() string   { return o.Unit.String() + " B" }
func (o Disband) String() string { return o.Unit.String() + " D" }
func (o Waive) String() string   { return "WAIVE" }

func (Hold) isOrder()        {}
func (Move) isOrder()        {}
func (SupportHold) isOrder() {}
func (SupportMove) isOrder() {}
func (Convoy) isOrder()      {}
func (Retreat) isOrder()     {}
func (Build) isOrder()       {}
func (Disband) isOrder()     {}
func (Waive) isOrder()       {}

// OrderResult describes the outcome of adjudicating an order.
type OrderResult int

const (
	ResultSucceeded OrderResult = iota // Order carried out
	ResultFailed                       // No convoy path, disrupted convoy, or nothing to do
	ResultDislodged                    // Unit was dislodged
	ResultBounced                      // Move or retreat bounced
	ResultCut                          // Support was cut
	ResultDisbanded                    // Unit removed (retreat phase or civil disorder)
)

func (r OrderResult) String() string {
	switch r {
	case ResultSucceeded:
		return "succeeded"
	case ResultFailed:
		return "failed"
	case ResultDislodged:
		return "dislodged"
	case ResultBounced:
		return "bounced"
	case ResultCut:
		return "cut"
	case ResultDisbanded:
		return "disbanded"
	default:
		return "unknown"
	}
}

// MarshalText encodes the result by name.
func (r OrderResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// OrderOutcome pairs an accepted order with its adjudication result.
type OrderOutcome struct {
	Power  Power       `json:"power"`
	Order  Order       `json:"-"`
	Text   string      `json:"order"`
	Result OrderResult `json:"result"`
	Note   string      `json:"note,omitempty"`
}

func newOutcome(o Order, r OrderResult, note string) OrderOutcome {
	return OrderOutcome{Power: o.Issuer(), Order: o, Text: o.String(), Result: r, Note: note}
}
