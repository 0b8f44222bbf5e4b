package entity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/octobees/campsites/api/internal/geo"
)

// GeographicalName is a named place from the national gazetteers.
type GeographicalName struct {
	ID              uuid.UUID `json:"id"`
	GovtID          string    `json:"govt_id"`
	Name            string    `json:"name"`
	SearchStr       string    `json:"search_str"`
	GenericCategory string    `json:"generic_category"`
	GenericTerm     string    `json:"generic_term"`
	County          *string   `json:"county"`
	StateProvince   State     `json:"state_province"`
	Country         Country   `json:"country"`
	Lon             float64   `json:"lon"`
	Lat             float64   `json:"lat"`
	Geo             orb.Point `json:"-"`
	PriorityOrder   int       `json:"priority_order"`
}

func (g *GeographicalName) Identity() uuid.UUID      { return g.ID }
func (g *GeographicalName) SetIdentity(id uuid.UUID) { g.ID = id }

// Prepare validates the place and derives Geo from the coordinates. An empty
// search string defaults to the lower-cased name.
func (g *GeographicalName) Prepare() error {
	var p problems
	if strings.TrimSpace(g.GovtID) == "" {
		p.addf("govt_id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		p.addf("name is required")
	}
	if g.SearchStr == "" {
		g.SearchStr = strings.ToLower(g.Name)
	}
	if !g.StateProvince.Valid() {
		p.addf("state_province %q is not a known state or province", g.StateProvince)
	} else if g.Country == "" {
		g.Country = CountryOf(g.StateProvince)
	}
	if g.Country != "" && !g.Country.Valid() {
		p.addf("country %q is not supported", g.Country)
	}
	checkCoordinates(&p, g.Lon, g.Lat)
	if err := p.err(); err != nil {
		return err
	}
	g.Geo = geo.NewPoint(g.Lon, g.Lat)
	return nil
}
