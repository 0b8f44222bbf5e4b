package repository

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/campsites/api/internal/entity"
)

// PlaceTable maps entity.GeographicalName onto the geographical_names table.
var PlaceTable = &Table[entity.GeographicalName]{
	Schema: entity.PlaceSchema,
	Columns: []Column{
		{Name: "govt_id"},
		{Name: "name"},
		{Name: "search_str"},
		{Name: "generic_category"},
		{Name: "generic_term"},
		{Name: "county"},
		{Name: "state_province", Cast: entity.StateEnumType},
		{Name: "country", Cast: entity.CountryEnumType},
		{Name: "lon"},
		{Name: "lat"},
		{Name: "priority_order"},
	},
	Values: func(g *entity.GeographicalName) []any {
		return []any{
			g.GovtID,
			g.Name,
			g.SearchStr,
			g.GenericCategory,
			g.GenericTerm,
			stringOrNil(g.County),
			string(g.StateProvince),
			string(g.Country),
			g.Lon,
			g.Lat,
			g.PriorityOrder,
		}
	},
	Scan: scanPlace,
}

// NewPGXPlacesRepository wires a pgx backed places repository.
func NewPGXPlacesRepository(pool *pgxpool.Pool) *PGXRepository[entity.GeographicalName] {
	return NewPGXRepository(pool, PlaceTable)
}

func scanPlace(row pgx.Row) (*entity.GeographicalName, error) {
	var (
		g              entity.GeographicalName
		state, country string
		geoRaw         []byte
	)
	err := row.Scan(
		&g.ID,
		&g.GovtID,
		&g.Name,
		&g.SearchStr,
		&g.GenericCategory,
		&g.GenericTerm,
		&g.County,
		&state,
		&country,
		&g.Lon,
		&g.Lat,
		&g.PriorityOrder,
		&geoRaw,
	)
	if err != nil {
		return nil, err
	}

	g.StateProvince = entity.State(state)
	g.Country = entity.Country(country)
	if g.Geo, err = scanGeo(geoRaw); err != nil {
		return nil, fmt.Errorf("place %s: %w", g.ID, err)
	}
	return &g, nil
}
