package entity

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/octobees/campsites/api/internal/query"
)

// Postgres enum type names.
const (
	StateEnumType        = "campsite_state_enum"
	CountryEnumType      = "campsite_country_enum"
	CampsiteTypeEnumType = "campsite_type_enum"
	BearingEnumType      = "bearing_enum"
	ToiletTypeEnumType   = "toilet_type_enum"
)

// CampsiteSchema declares the filters and sort keys of GET /campsites.
var CampsiteSchema = query.MustCompile(&query.Schema[Campsite]{
	Table:     "campsites",
	GeoColumn: "geo",
	Point:     func(c *Campsite) orb.Point { return c.Geo },
	ID:        func(c *Campsite) uuid.UUID { return c.ID },
	Fields: map[string]query.Field[Campsite]{
		"code":                  str(func(c *Campsite) *string { return c.Code }, "code"),
		"name":                  {Column: "name", Kind: query.KindString, Get: func(c *Campsite) any { return c.Name }},
		"state":                 enum("state", States, StateEnumType, func(c *Campsite) any { return string(c.State) }),
		"country":               enum("country", Countries, CountryEnumType, func(c *Campsite) any { return string(c.Country) }),
		"campsite_type":         enum("campsite_type", CampsiteTypes, CampsiteTypeEnumType, func(c *Campsite) any { return optEnum(c.CampsiteType) }),
		"month_open":            integer(func(c *Campsite) *int { return c.MonthOpen }, "month_open"),
		"month_close":           integer(func(c *Campsite) *int { return c.MonthClose }, "month_close"),
		"elevation_ft":          integer(func(c *Campsite) *int { return c.ElevationFt }, "elevation_ft"),
		"num_campsites":         integer(func(c *Campsite) *int { return c.NumCampsites }, "num_campsites"),
		"nearest_town_distance": float(func(c *Campsite) *float64 { return c.NearestTownDistance }, "nearest_town_distance"),
		"has_rv_hookup":         boolean(func(c *Campsite) *bool { return c.HasRVHookup }, "has_rv_hookup"),
		"has_water_hookup":      boolean(func(c *Campsite) *bool { return c.HasWaterHookup }, "has_water_hookup"),
		"has_electric_hookup":   boolean(func(c *Campsite) *bool { return c.HasElectricHookup }, "has_electric_hookup"),
		"has_sewer_hookup":      boolean(func(c *Campsite) *bool { return c.HasSewerHookup }, "has_sewer_hookup"),
		"has_sanitary_dump":     boolean(func(c *Campsite) *bool { return c.HasSanitaryDump }, "has_sanitary_dump"),
		"max_rv_length":         integer(func(c *Campsite) *int { return c.MaxRVLength }, "max_rv_length"),
		"has_toilets":           boolean(func(c *Campsite) *bool { return c.HasToilets }, "has_toilets"),
		"toilet_type":           enum("toilet_type", ToiletTypes, ToiletTypeEnumType, func(c *Campsite) any { return optEnum(c.ToiletType) }),
		"has_drinking_water":    boolean(func(c *Campsite) *bool { return c.HasDrinkingWater }, "has_drinking_water"),
		"has_showers":           boolean(func(c *Campsite) *bool { return c.HasShowers }, "has_showers"),
		"accepts_reservations":  boolean(func(c *Campsite) *bool { return c.AcceptsReservations }, "accepts_reservations"),
		"accepts_pets":          boolean(func(c *Campsite) *bool { return c.AcceptsPets }, "accepts_pets"),
		"low_no_fee":            boolean(func(c *Campsite) *bool { return c.LowNoFee }, "low_no_fee"),
	},
	Params: []query.Param{
		{Key: "code__ct"},
		{Key: "name__ct"},
		{Key: "state", List: true},
		{Key: "country"},
		{Key: "campsite_type", List: true},
		{Key: "month_open__lt"},
		{Key: "month_close__gt"},
		{Key: "elevation_ft__gt"},
		{Key: "elevation_ft__lt"},
		{Key: "num_campsites__gt"},
		{Key: "num_campsites__lt"},
		{Key: "nearest_town_distance__lt"},
		{Key: "has_rv_hookup"},
		{Key: "has_water_hookup"},
		{Key: "has_electric_hookup"},
		{Key: "has_sewer_hookup"},
		{Key: "has_sanitary_dump"},
		{Key: "max_rv_length__gt"},
		{Key: "has_toilets"},
		{Key: "toilet_type", List: true},
		{Key: "has_drinking_water"},
		{Key: "has_showers"},
		{Key: "accepts_reservations"},
		{Key: "accepts_pets"},
		{Key: "low_no_fee"},
	},
	SortKeys:    []string{"code", "name", "state", "country", "campsite_type", "elevation_ft", "num_campsites"},
	DefaultSort: "name",
})

// PlaceSchema declares the filters and sort keys of GET /places.
var PlaceSchema = query.MustCompile(&query.Schema[GeographicalName]{
	Table:     "geographical_names",
	GeoColumn: "geo",
	Point:     func(g *GeographicalName) orb.Point { return g.Geo },
	ID:        func(g *GeographicalName) uuid.UUID { return g.ID },
	Fields: map[string]query.Field[GeographicalName]{
		"name":           {Column: "name", Kind: query.KindString, Get: func(g *GeographicalName) any { return g.Name }},
		"search_str":     {Column: "search_str", Kind: query.KindString, Get: func(g *GeographicalName) any { return g.SearchStr }},
		"generic_term":   {Column: "generic_term", Kind: query.KindString, Get: func(g *GeographicalName) any { return g.GenericTerm }},
		"state_province": enum("state_province", States, StateEnumType, func(g *GeographicalName) any { return string(g.StateProvince) }),
		"country":        enum("country", Countries, CountryEnumType, func(g *GeographicalName) any { return string(g.Country) }),
		"priority_order": {Column: "priority_order", Kind: query.KindInt, Get: func(g *GeographicalName) any { return g.PriorityOrder }},
	},
	Params: []query.Param{
		{Key: "state_province", List: true},
		{Key: "country"},
		{Key: "name__ct"},
		{Key: "search_str__ct"},
		{Key: "generic_term"},
	},
	SortKeys:    []string{"priority_order", "name", "state_province", "country"},
	DefaultSort: "priority_order",
})

func enum[T any](column string, values []string, cast string, get func(*T) any) query.Field[T] {
	return query.Field[T]{Column: column, Kind: query.KindEnum, Enum: values, Cast: cast, Get: get}
}

func str[T any](get func(*T) *string, column string) query.Field[T] {
	return query.Field[T]{Column: column, Kind: query.KindString, Get: func(t *T) any {
		if v := get(t); v != nil {
			return *v
		}
		return nil
	}}
}

func integer[T any](get func(*T) *int, column string) query.Field[T] {
	return query.Field[T]{Column: column, Kind: query.KindInt, Get: func(t *T) any {
		if v := get(t); v != nil {
			return *v
		}
		return nil
	}}
}

func float[T any](get func(*T) *float64, column string) query.Field[T] {
	return query.Field[T]{Column: column, Kind: query.KindFloat, Get: func(t *T) any {
		if v := get(t); v != nil {
			return *v
		}
		return nil
	}}
}

func boolean[T any](get func(*T) *bool, column string) query.Field[T] {
	return query.Field[T]{Column: column, Kind: query.KindBool, Get: func(t *T) any {
		if v := get(t); v != nil {
			return *v
		}
		return nil
	}}
}

func optEnum[E ~string](v *E) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
