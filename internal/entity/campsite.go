package entity

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/octobees/campsites/api/internal/geo"
)

// Campsite is a campground in the US or Canada.
type Campsite struct {
	ID                  uuid.UUID     `json:"id"`
	Code                *string       `json:"code"`
	Name                string        `json:"name"`
	State               State         `json:"state"`
	Country             Country       `json:"country"`
	CampsiteType        *CampsiteType `json:"campsite_type"`
	Lon                 float64       `json:"lon"`
	Lat                 float64       `json:"lat"`
	Geo                 orb.Point     `json:"-"`
	Composite           string        `json:"composite"`
	Comments            *string       `json:"comments"`
	Phone               *string       `json:"phone"`
	MonthOpen           *int          `json:"month_open"`
	MonthClose          *int          `json:"month_close"`
	ElevationFt         *int          `json:"elevation_ft"`
	NumCampsites        *int          `json:"num_campsites"`
	NearestTown         *string       `json:"nearest_town"`
	NearestTownDistance *float64      `json:"nearest_town_distance"`
	NearestTownBearing  *Bearing      `json:"nearest_town_bearing"`

	HasRVHookup         *bool       `json:"has_rv_hookup"`
	HasWaterHookup      *bool       `json:"has_water_hookup"`
	HasElectricHookup   *bool       `json:"has_electric_hookup"`
	HasSewerHookup      *bool       `json:"has_sewer_hookup"`
	HasSanitaryDump     *bool       `json:"has_sanitary_dump"`
	MaxRVLength         *int        `json:"max_rv_length"`
	HasToilets          *bool       `json:"has_toilets"`
	ToiletType          *ToiletType `json:"toilet_type"`
	HasDrinkingWater    *bool       `json:"has_drinking_water"`
	HasShowers          *bool       `json:"has_showers"`
	AcceptsReservations *bool       `json:"accepts_reservations"`
	AcceptsPets         *bool       `json:"accepts_pets"`
	LowNoFee            *bool       `json:"low_no_fee"`

	// set when a decoded JSON body left out lon or lat
	lonMissing, latMissing bool
}

// UnmarshalJSON records whether lon and lat were present so that Prepare can
// tell a missing coordinate from a zero one.
func (c *Campsite) UnmarshalJSON(data []byte) error {
	type plain Campsite
	aux := struct {
		*plain
		Lon *float64 `json:"lon"`
		Lat *float64 `json:"lat"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.lonMissing, c.latMissing = aux.Lon == nil, aux.Lat == nil
	if aux.Lon != nil {
		c.Lon = *aux.Lon
	}
	if aux.Lat != nil {
		c.Lat = *aux.Lat
	}
	return nil
}

func (c *Campsite) Identity() uuid.UUID      { return c.ID }
func (c *Campsite) SetIdentity(id uuid.UUID) { c.ID = id }

// Prepare validates the campsite, fills the country from the state when it is
// missing and derives Geo from the coordinates.
func (c *Campsite) Prepare() error {
	var p problems
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		p.addf("name is required")
	}
	if strings.TrimSpace(c.Composite) == "" {
		p.addf("composite is required")
	}
	if !c.State.Valid() {
		p.addf("state %q is not a known state or province", c.State)
	} else if c.Country == "" {
		c.Country = CountryOf(c.State)
	}
	if c.Country != "" && !c.Country.Valid() {
		p.addf("country %q is not supported", c.Country)
	}
	if c.CampsiteType != nil && !c.CampsiteType.Valid() {
		p.addf("campsite_type %q is not a known agency code", *c.CampsiteType)
	}
	if c.NearestTownBearing != nil && !c.NearestTownBearing.Valid() {
		p.addf("nearest_town_bearing %q is not a compass point", *c.NearestTownBearing)
	}
	if c.ToiletType != nil && !c.ToiletType.Valid() {
		p.addf("toilet_type %q is not supported", *c.ToiletType)
	}
	checkMonth(&p, "month_open", c.MonthOpen)
	checkMonth(&p, "month_close", c.MonthClose)
	if c.NearestTownDistance != nil && !finite(*c.NearestTownDistance) {
		p.addf("nearest_town_distance must be a finite number")
	}
	if c.lonMissing {
		p.addf("lon is required")
	}
	if c.latMissing {
		p.addf("lat is required")
	}
	checkCoordinates(&p, c.Lon, c.Lat)
	if err := p.err(); err != nil {
		return err
	}
	c.Geo = geo.NewPoint(c.Lon, c.Lat)
	return nil
}

func checkMonth(p *problems, name string, month *int) {
	if month != nil && (*month < 1 || *month > 12) {
		p.addf("%s %d is not a month", name, *month)
	}
}
