package diplomacy

// StandardTopology returns the standard 75-region map. Split coasts are
// collapsed into their parent region, so Spain, St Petersburg and Bulgaria
// each hold at most one unit and accept fleets from either side.
func StandardTopology() Topology {
	edges := make([]Edge, 0, 2*len(standardBorders))
	for _, b := range standardBorders {
		edges = append(edges,
			Edge{From: b.a, To: b.b, Passage: b.passage},
			Edge{From: b.b, To: b.a, Passage: b.passage},
		)
	}
	aliases := make(map[string]string, len(regionAliases))
	for k, v := range regionAliases {
		aliases[k] = v
	}
	return Topology{
		Regions: append([]RegionSpec(nil), standardRegions...),
		Edges:   edges,
		Aliases: aliases,
	}
}

// regionAliases maps alternate abbreviations to canonical region names.
var regionAliases = map[string]string{
	"NRG": "NWG",
	"GOL": "LYO",
}

const (
	armyOnly     = ArmyPassage
	fleetOnly    = FleetPassage
	armyAndFleet = ArmyPassage | FleetPassage
)

var standardRegions = []RegionSpec{
	{"BOH", "Bohemia", Land, false, Neutral},
	{"BUD", "Budapest", Land, true, Austria},
	{"BUR", "Burgundy", Land, false, Neutral},
	{"GAL", "Galicia", Land, false, Neutral},
	{"MOS", "Moscow", Land, true, Russia},
	{"MUN", "Munich", Land, true, Germany},
	{"PAR", "Paris", Land, true, France},
	{"RUH", "Ruhr", Land, false, Neutral},
	{"SER", "Serbia", Land, true, Neutral},
	{"SIL", "Silesia", Land, false, Neutral},
	{"TYR", "Tyrolia", Land, false, Neutral},
	{"UKR", "Ukraine", Land, false, Neutral},
	{"VIE", "Vienna", Land, true, Austria},
	{"WAR", "Warsaw", Land, true, Russia},
	{"ALB", "Albania", Coast, false, Neutral},
	{"ANK", "Ankara", Coast, true, Turkey},
	{"APU", "Apulia", Coast, false, Neutral},
	{"ARM", "Armenia", Coast, false, Neutral},
	{"BEL", "Belgium", Coast, true, Neutral},
	{"BER", "Berlin", Coast, true, Germany},
	{"BRE", "Brest", Coast, true, France},
	{"CLY", "Clyde", Coast, false, Neutral},
	{"CON", "Constantinople", Coast, true, Turkey},
	{"DEN", "Denmark", Coast, true, Neutral},
	{"EDI", "Edinburgh", Coast, true, England},
	{"FIN", "Finland", Coast, false, Neutral},
	{"GAS", "Gascony", Coast, false, Neutral},
	{"GRE", "Greece", Coast, true, Neutral},
	{"HOL", "Holland", Coast, true, Neutral},
	{"KIE", "Kiel", Coast, true, Germany},
	{"LON", "London", Coast, true, England},
	{"LVN", "Livonia", Coast, false, Neutral},
	{"LVP", "Liverpool", Coast, true, England},
	{"MAR", "Marseilles", Coast, true, France},
	{"NAF", "North Africa", Coast, false, Neutral},
	{"NAP", "Naples", Coast, true, Italy},
	{"NWY", "Norway", Coast, true, Neutral},
	{"PIC", "Picardy", Coast, false, Neutral},
	{"PIE", "Piedmont", Coast, false, Neutral},
	{"POR", "Portugal", Coast, true, Neutral},
	{"PRU", "Prussia", Coast, false, Neutral},
	{"ROM", "Rome", Coast, true, Italy},
	{"RUM", "Rumania", Coast, true, Neutral},
	{"SEV", "Sevastopol", Coast, true, Russia},
	{"SMY", "Smyrna", Coast, true, Turkey},
	{"SWE", "Sweden", Coast, true, Neutral},
	{"SYR", "Syria", Coast, false, Neutral},
	{"TRI", "Trieste", Coast, true, Austria},
	{"TUN", "Tunisia", Coast, true, Neutral},
	{"TUS", "Tuscany", Coast, false, Neutral},
	{"VEN", "Venice", Coast, true, Italy},
	{"WAL", "Wales", Coast, false, Neutral},
	{"YOR", "Yorkshire", Coast, false, Neutral},
	{"BUL", "Bulgaria", Coast, true, Neutral},
	{"SPA", "Spain", Coast, true, Neutral},
	{"STP", "St. Petersburg", Coast, true, Russia},
	{"ADR", "Adriatic Sea", Sea, false, Neutral},
	{"AEG", "Aegean Sea", Sea, false, Neutral},
	{"BAL", "Baltic Sea", Sea, false, Neutral},
	{"BAR", "Barents Sea", Sea, false, Neutral},
	{"BLA", "Black Sea", Sea, false, Neutral},
	{"BOT", "Gulf of Bothnia", Sea, false, Neutral},
	{"EAS", "Eastern Mediterranean", Sea, false, Neutral},
	{"ENG", "English Channel", Sea, false, Neutral},
	{"LYO", "Gulf of Lyon", Sea, false, Neutral},
	{"HEL", "Heligoland Bight", Sea, false, Neutral},
	{"ION", "Ionian Sea", Sea, false, Neutral},
	{"IRI", "Irish Sea", Sea, false, Neutral},
	{"MAO", "Mid-Atlantic Ocean", Sea, false, Neutral},
	{"NAO", "North Atlantic Ocean", Sea, false, Neutral},
	{"NWG", "Norwegian Sea", Sea, false, Neutral},
	{"NTH", "North Sea", Sea, false, Neutral},
	{"SKA", "Skagerrak", Sea, false, Neutral},
	{"TYS", "Tyrrhenian Sea", Sea, false, Neutral},
	{"WES", "Western Mediterranean", Sea, false, Neutral},
}

// standardBorders lists each border once; StandardTopology emits both directions.
var standardBorders = []struct {
	a, b    string
	passage Passage
}{
	{"ADR", "ALB", fleetOnly},
	{"ADR", "APU", fleetOnly},
	{"ADR", "ION", fleetOnly},
	{"ADR", "TRI", fleetOnly},
	{"ADR", "VEN", fleetOnly},
	{"AEG", "BUL", fleetOnly},
	{"AEG", "CON", fleetOnly},
	{"AEG", "EAS", fleetOnly},
	{"AEG", "GRE", fleetOnly},
	{"AEG", "ION", fleetOnly},
	{"AEG", "SMY", fleetOnly},
	{"ALB", "GRE", armyAndFleet},
	{"ALB", "ION", fleetOnly},
	{"ALB", "SER", armyOnly},
	{"ALB", "TRI", armyAndFleet},
	{"ANK", "ARM", armyAndFleet},
	{"ANK", "BLA", fleetOnly},
	{"ANK", "CON", armyAndFleet},
	{"ANK", "SMY", armyOnly},
	{"APU", "ION", fleetOnly},
	{"APU", "NAP", armyAndFleet},
	{"APU", "ROM", armyOnly},
	{"APU", "VEN", armyAndFleet},
	{"ARM", "BLA", fleetOnly},
	{"ARM", "SEV", armyAndFleet},
	{"ARM", "SMY", armyOnly},
	{"ARM", "SYR", armyOnly},
	{"BAL", "BER", fleetOnly},
	{"BAL", "BOT", fleetOnly},
	{"BAL", "DEN", fleetOnly},
	{"BAL", "KIE", fleetOnly},
	{"BAL", "LVN", fleetOnly},
	{"BAL", "PRU", fleetOnly},
	{"BAL", "SWE", fleetOnly},
	{"BAR", "NWG", fleetOnly},
	{"BAR", "NWY", fleetOnly},
	{"BAR", "STP", fleetOnly},
	{"BEL", "BUR", armyOnly},
	{"BEL", "ENG", fleetOnly},
	{"BEL", "HOL", armyAndFleet},
	{"BEL", "NTH", fleetOnly},
	{"BEL", "PIC", armyAndFleet},
	{"BEL", "RUH", armyOnly},
	{"BER", "KIE", armyAndFleet},
	{"BER", "MUN", armyOnly},
	{"BER", "PRU", armyAndFleet},
	{"BER", "SIL", armyOnly},
	{"BLA", "BUL", fleetOnly},
	{"BLA", "CON", fleetOnly},
	{"BLA", "RUM", fleetOnly},
	{"BLA", "SEV", fleetOnly},
	{"BOH", "GAL", armyOnly},
	{"BOH", "MUN", armyOnly},
	{"BOH", "SIL", armyOnly},
	{"BOH", "TYR", armyOnly},
	{"BOH", "VIE", armyOnly},
	{"BOT", "FIN", fleetOnly},
	{"BOT", "LVN", fleetOnly},
	{"BOT", "STP", fleetOnly},
	{"BOT", "SWE", fleetOnly},
	{"BRE", "ENG", fleetOnly},
	{"BRE", "GAS", armyAndFleet},
	{"BRE", "MAO", fleetOnly},
	{"BRE", "PAR", armyOnly},
	{"BRE", "PIC", armyAndFleet},
	{"BUD", "GAL", armyOnly},
	{"BUD", "RUM", armyOnly},
	{"BUD", "SER", armyOnly},
	{"BUD", "TRI", armyOnly},
	{"BUD", "VIE", armyOnly},
	{"BUL", "CON", armyAndFleet},
	{"BUL", "GRE", armyAndFleet},
	{"BUL", "RUM", armyAndFleet},
	{"BUL", "SER", armyOnly},
	{"BUR", "GAS", armyOnly},
	{"BUR", "MAR", armyOnly},
	{"BUR", "MUN", armyOnly},
	{"BUR", "PAR", armyOnly},
	{"BUR", "PIC", armyOnly},
	{"BUR", "RUH", armyOnly},
	{"CLY", "EDI", armyAndFleet},
	{"CLY", "LVP", armyAndFleet},
	{"CLY", "NAO", fleetOnly},
	{"CLY", "NWG", fleetOnly},
	{"CON", "SMY", armyAndFleet},
	{"DEN", "HEL", fleetOnly},
	{"DEN", "KIE", armyAndFleet},
	{"DEN", "NTH", fleetOnly},
	{"DEN", "SKA", fleetOnly},
	{"DEN", "SWE", armyAndFleet},
	{"EAS", "ION", fleetOnly},
	{"EAS", "SMY", fleetOnly},
	{"EAS", "SYR", fleetOnly},
	{"EDI", "LVP", armyOnly},
	{"EDI", "NWG", fleetOnly},
	{"EDI", "NTH", fleetOnly},
	{"EDI", "YOR", armyAndFleet},
	{"ENG", "IRI", fleetOnly},
	{"ENG", "LON", fleetOnly},
	{"ENG", "MAO", fleetOnly},
	{"ENG", "NTH", fleetOnly},
	{"ENG", "PIC", fleetOnly},
	{"ENG", "WAL", fleetOnly},
	{"FIN", "NWY", armyOnly},
	{"FIN", "STP", armyAndFleet},
	{"FIN", "SWE", armyAndFleet},
	{"GAL", "RUM", armyOnly},
	{"GAL", "SIL", armyOnly},
	{"GAL", "UKR", armyOnly},
	{"GAL", "VIE", armyOnly},
	{"GAL", "WAR", armyOnly},
	{"GAS", "MAO", fleetOnly},
	{"GAS", "MAR", armyOnly},
	{"GAS", "PAR", armyOnly},
	{"GAS", "SPA", armyAndFleet},
	{"LYO", "MAR", fleetOnly},
	{"LYO", "PIE", fleetOnly},
	{"LYO", "SPA", fleetOnly},
	{"LYO", "TUS", fleetOnly},
	{"LYO", "TYS", fleetOnly},
	{"LYO", "WES", fleetOnly},
	{"GRE", "ION", fleetOnly},
	{"GRE", "SER", armyOnly},
	{"HEL", "HOL", fleetOnly},
	{"HEL", "KIE", fleetOnly},
	{"HEL", "NTH", fleetOnly},
	{"HOL", "KIE", armyAndFleet},
	{"HOL", "NTH", fleetOnly},
	{"HOL", "RUH", armyOnly},
	{"ION", "NAP", fleetOnly},
	{"ION", "TUN", fleetOnly},
	{"ION", "TYS", fleetOnly},
	{"IRI", "LVP", fleetOnly},
	{"IRI", "MAO", fleetOnly},
	{"IRI", "NAO", fleetOnly},
	{"IRI", "WAL", fleetOnly},
	{"KIE", "MUN", armyOnly},
	{"KIE", "RUH", armyOnly},
	{"LON", "NTH", fleetOnly},
	{"LON", "WAL", armyAndFleet},
	{"LON", "YOR", armyAndFleet},
	{"LVN", "MOS", armyOnly},
	{"LVN", "PRU", armyAndFleet},
	{"LVN", "STP", armyAndFleet},
	{"LVN", "WAR", armyOnly},
	{"LVP", "NAO", fleetOnly},
	{"LVP", "WAL", armyAndFleet},
	{"LVP", "YOR", armyOnly},
	{"MAO", "NAF", fleetOnly},
	{"MAO", "NAO", fleetOnly},
	{"MAO", "POR", fleetOnly},
	{"MAO", "SPA", fleetOnly},
	{"MAO", "WES", fleetOnly},
	{"MAR", "PIE", armyAndFleet},
	{"MAR", "SPA", armyAndFleet},
	{"MOS", "SEV", armyOnly},
	{"MOS", "STP", armyOnly},
	{"MOS", "UKR", armyOnly},
	{"MOS", "WAR", armyOnly},
	{"MUN", "RUH", armyOnly},
	{"MUN", "SIL", armyOnly},
	{"MUN", "TYR", armyOnly},
	{"NAF", "TUN", armyAndFleet},
	{"NAF", "WES", fleetOnly},
	{"NAO", "NWG", fleetOnly},
	{"NAP", "ROM", armyAndFleet},
	{"NAP", "TYS", fleetOnly},
	{"NWG", "NTH", fleetOnly},
	{"NWG", "NWY", fleetOnly},
	{"NTH", "NWY", fleetOnly},
	{"NTH", "SKA", fleetOnly},
	{"NTH", "YOR", fleetOnly},
	{"NWY", "SKA", fleetOnly},
	{"NWY", "STP", armyAndFleet},
	{"NWY", "SWE", armyAndFleet},
	{"PAR", "PIC", armyOnly},
	{"PIE", "TUS", armyAndFleet},
	{"PIE", "TYR", armyOnly},
	{"PIE", "VEN", armyOnly},
	{"POR", "SPA", armyAndFleet},
	{"PRU", "SIL", armyOnly},
	{"PRU", "WAR", armyOnly},
	{"ROM", "TUS", armyAndFleet},
	{"ROM", "TYS", fleetOnly},
	{"ROM", "VEN", armyOnly},
	{"RUM", "SER", armyOnly},
	{"RUM", "SEV", armyAndFleet},
	{"RUM", "UKR", armyOnly},
	{"SER", "TRI", armyOnly},
	{"SEV", "UKR", armyOnly},
	{"SIL", "WAR", armyOnly},
	{"SKA", "SWE", fleetOnly},
	{"SMY", "SYR", armyAndFleet},
	{"SPA", "WES", fleetOnly},
	{"TRI", "TYR", armyOnly},
	{"TRI", "VEN", armyAndFleet},
	{"TRI", "VIE", armyOnly},
	{"TUN", "TYS", fleetOnly},
	{"TUN", "WES", fleetOnly},
	{"TUS", "TYS", fleetOnly},
	{"TUS", "VEN", armyOnly},
	{"TYR", "VEN", armyOnly},
	{"TYR", "VIE", armyOnly},
	{"TYS", "WES", fleetOnly},
	{"UKR", "WAR", armyOnly},
	{"WAL", "YOR", armyOnly},
}

type startingUnit struct {
	Type   UnitType
	Region string
}

// standardStartingUnits is the Spring 1901 position.
var standardStartingUnits = map[Power][]startingUnit{
	Austria: {{Army, "VIE"}, {Army, "BUD"}, {Fleet, "TRI"}},
	England: {{Fleet, "LON"}, {Fleet, "EDI"}, {Army, "LVP"}},
	France:  {{Fleet, "BRE"}, {Army, "PAR"}, {Army, "MAR"}},
	Germany: {{Fleet, "KIE"}, {Army, "BER"}, {Army, "MUN"}},
	Italy:   {{Fleet, "NAP"}, {Army, "ROM"}, {Army, "VEN"}},
	Russia:  {{Fleet, "STP"}, {Army, "MOS"}, {Army, "WAR"}, {Fleet, "SEV"}},
	Turkey:  {{Fleet, "ANK"}, {Army, "CON"}, {Army, "SMY"}},
}
