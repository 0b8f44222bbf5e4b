package entity

// State is a US state, DC, or Canadian province/territory code.
type State string

// Country is the ISO alpha-3 country of a record.
type Country string

// CampsiteType is the managing agency code of a campsite.
type CampsiteType string

// Bearing is the compass direction from the nearest town.
type Bearing string

// ToiletType describes the toilets available at a campsite.
type ToiletType string

const (
	CountryCanada Country = "CAN"
	CountryUSA    Country = "USA"
)

// Values are listed in the order of the Postgres enum types.
var (
	States = []string{
		"AK", "AL", "AR", "AZ", "CA", "CO", "CT", "DC", "DE", "FL", "GA", "HI", "IA", "ID",
		"IL", "IN", "KS", "KY", "LA", "MA", "MD", "ME", "MI", "MN", "MO", "MS", "MT", "NC",
		"ND", "NE", "NH", "NJ", "NM", "NV", "NY", "OH", "OK", "OR", "PA", "RI", "SC", "SD",
		"TN", "TX", "UT", "VA", "VT", "WA", "WI", "WV", "WY",
		"AB", "BC", "MB", "NB", "NL", "NT", "NS", "NU", "ON", "PE", "QC", "SK", "YT",
	}
	Countries     = []string{string(CountryCanada), string(CountryUSA)}
	CampsiteTypes = []string{
		"AMC", "AUTH", "BLM", "BOR", "CNP", "COE", "CP", "MIL", "NF", "NM", "NP", "NRA",
		"NS", "NWR", "PP", "PR", "RES", "SB", "SCA", "SF", "SFW", "SP", "SPR", "SR",
		"SRVA", "SRA", "TVA", "USFW", "UTIL",
	}
	Bearings    = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	ToiletTypes = []string{"flush", "vault", "mixed", "pit"}
)

var canadianProvinces = map[State]struct{}{
	"AB": {}, "BC": {}, "MB": {}, "NB": {}, "NL": {}, "NT": {}, "NS": {},
	"NU": {}, "ON": {}, "PE": {}, "QC": {}, "SK": {}, "YT": {},
}

var (
	stateSet        = setOf(States)
	countrySet      = setOf(Countries)
	campsiteTypeSet = setOf(CampsiteTypes)
	bearingSet      = setOf(Bearings)
	toiletTypeSet   = setOf(ToiletTypes)
)

func setOf(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func (s State) Valid() bool        { _, ok := stateSet[string(s)]; return ok }
func (c Country) Valid() bool      { _, ok := countrySet[string(c)]; return ok }
func (t CampsiteType) Valid() bool { _, ok := campsiteTypeSet[string(t)]; return ok }
func (b Bearing) Valid() bool      { _, ok := bearingSet[string(b)]; return ok }
func (t ToiletType) Valid() bool   { _, ok := toiletTypeSet[string(t)]; return ok }

// CountryOf returns the country a state or province belongs to.
func CountryOf(s State) Country {
	if _, ok := canadianProvinces[s]; ok {
		return CountryCanada
	}
	return CountryUSA
}
