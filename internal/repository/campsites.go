package repository

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/campsites/api/internal/entity"
)

// CampsiteTable maps entity.Campsite onto the campsites table.
var CampsiteTable = &Table[entity.Campsite]{
	Schema: entity.CampsiteSchema,
	Columns: []Column{
		{Name: "code"},
		{Name: "name"},
		{Name: "state", Cast: entity.StateEnumType},
		{Name: "country", Cast: entity.CountryEnumType},
		{Name: "campsite_type", Cast: entity.CampsiteTypeEnumType},
		{Name: "lon"},
		{Name: "lat"},
		{Name: "composite"},
		{Name: "comments"},
		{Name: "phone"},
		{Name: "month_open"},
		{Name: "month_close"},
		{Name: "elevation_ft"},
		{Name: "num_campsites"},
		{Name: "nearest_town"},
		{Name: "nearest_town_distance"},
		{Name: "nearest_town_bearing", Cast: entity.BearingEnumType},
		{Name: "has_rv_hookup"},
		{Name: "has_water_hookup"},
		{Name: "has_electric_hookup"},
		{Name: "has_sewer_hookup"},
		{Name: "has_sanitary_dump"},
		{Name: "max_rv_length"},
		{Name: "has_toilets"},
		{Name: "toilet_type", Cast: entity.ToiletTypeEnumType},
		{Name: "has_drinking_water"},
		{Name: "has_showers"},
		{Name: "accepts_reservations"},
		{Name: "accepts_pets"},
		{Name: "low_no_fee"},
	},
	Values: campsiteValues,
	Scan:   scanCampsite,
}

// NewPGXCampsitesRepository wires a pgx backed campsites repository.
func NewPGXCampsitesRepository(pool *pgxpool.Pool) *PGXRepository[entity.Campsite] {
	return NewPGXRepository(pool, CampsiteTable)
}

func campsiteValues(c *entity.Campsite) []any {
	return []any{
		stringOrNil(c.Code),
		c.Name,
		string(c.State),
		string(c.Country),
		enumOrNil(c.CampsiteType),
		c.Lon,
		c.Lat,
		c.Composite,
		stringOrNil(c.Comments),
		stringOrNil(c.Phone),
		intOrNil(c.MonthOpen),
		intOrNil(c.MonthClose),
		intOrNil(c.ElevationFt),
		intOrNil(c.NumCampsites),
		stringOrNil(c.NearestTown),
		floatOrNil(c.NearestTownDistance),
		enumOrNil(c.NearestTownBearing),
		boolOrNil(c.HasRVHookup),
		boolOrNil(c.HasWaterHookup),
		boolOrNil(c.HasElectricHookup),
		boolOrNil(c.HasSewerHookup),
		boolOrNil(c.HasSanitaryDump),
		intOrNil(c.MaxRVLength),
		boolOrNil(c.HasToilets),
		enumOrNil(c.ToiletType),
		boolOrNil(c.HasDrinkingWater),
		boolOrNil(c.HasShowers),
		boolOrNil(c.AcceptsReservations),
		boolOrNil(c.AcceptsPets),
		boolOrNil(c.LowNoFee),
	}
}

func scanCampsite(row pgx.Row) (*entity.Campsite, error) {
	var (
		c                                 entity.Campsite
		state, country                    string
		campsiteType, bearing, toiletType *string
		geoRaw                            []byte
	)
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&state,
		&country,
		&campsiteType,
		&c.Lon,
		&c.Lat,
		&c.Composite,
		&c.Comments,
		&c.Phone,
		&c.MonthOpen,
		&c.MonthClose,
		&c.ElevationFt,
		&c.NumCampsites,
		&c.NearestTown,
		&c.NearestTownDistance,
		&bearing,
		&c.HasRVHookup,
		&c.HasWaterHookup,
		&c.HasElectricHookup,
		&c.HasSewerHookup,
		&c.HasSanitaryDump,
		&c.MaxRVLength,
		&c.HasToilets,
		&toiletType,
		&c.HasDrinkingWater,
		&c.HasShowers,
		&c.AcceptsReservations,
		&c.AcceptsPets,
		&c.LowNoFee,
		&geoRaw,
	)
	if err != nil {
		return nil, err
	}

	c.State = entity.State(state)
	c.Country = entity.Country(country)
	c.CampsiteType = enumPtr[entity.CampsiteType](campsiteType)
	c.NearestTownBearing = enumPtr[entity.Bearing](bearing)
	c.ToiletType = enumPtr[entity.ToiletType](toiletType)
	if c.Geo, err = scanGeo(geoRaw); err != nil {
		return nil, fmt.Errorf("campsite %s: %w", c.ID, err)
	}
	return &c, nil
}
