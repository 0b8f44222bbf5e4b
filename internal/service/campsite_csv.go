package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/octobees/campsites/api/internal/entity"
)

var requiredCSVHeaders = []string{
	"lon", "lat", "composite", "code", "name", "type", "phone", "dates_open", "comments",
	"num_campsites", "elevation_ft", "amenities", "state", "nearest_town_distance",
	"nearest_town_bearing", "nearest_town",
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func (s *CampsitesService) parseRow(row []string, index map[string]int) (entity.Campsite, error) {
	col := func(name string) string { return strings.TrimSpace(row[index[name]]) }

	var c entity.Campsite
	lon, err := parseRequiredFloat(col("lon"))
	if err != nil {
		return c, fmt.Errorf("invalid lon: %w", err)
	}
	lat, err := parseRequiredFloat(col("lat"))
	if err != nil {
		return c, fmt.Errorf("invalid lat: %w", err)
	}
	c.Lon, c.Lat = lon, lat

	c.Composite = col("composite")
	if c.Composite == "" {
		return c, fmt.Errorf("composite is required")
	}
	c.Name = col("name")
	if c.Name == "" {
		return c, fmt.Errorf("name is required")
	}
	c.State = entity.State(strings.ToUpper(col("state")))
	if !c.State.Valid() {
		return c, fmt.Errorf("invalid state %q", col("state"))
	}
	c.Country = entity.CountryOf(c.State)
	c.Code = normalizeString(col("code"))
	c.Comments = normalizeString(col("comments"))
	c.NearestTown = normalizeString(col("nearest_town"))

	if raw := col("type"); raw != "" {
		t := entity.CampsiteType(strings.ToUpper(raw))
		if !t.Valid() {
			return c, fmt.Errorf("invalid type %q", raw)
		}
		c.CampsiteType = &t
	}
	if raw := col("nearest_town_bearing"); raw != "" {
		b := entity.Bearing(strings.ToUpper(raw))
		if !b.Valid() {
			return c, fmt.Errorf("invalid nearest_town_bearing %q", raw)
		}
		c.NearestTownBearing = &b
	}

	if c.NumCampsites, err = parseOptionalInt(col("num_campsites")); err != nil {
		return c, fmt.Errorf("invalid num_campsites value")
	}
	if c.ElevationFt, err = parseOptionalInt(col("elevation_ft")); err != nil {
		return c, fmt.Errorf("invalid elevation_ft value")
	}
	if c.NearestTownDistance, err = parseOptionalFloat(col("nearest_town_distance")); err != nil {
		return c, fmt.Errorf("invalid nearest_town_distance value")
	}

	if raw := col("phone"); raw != "" {
		phone := normalizePhone(raw, phoneRegion(c.Country, s.phoneRegion))
		c.Phone = &phone
	}
	c.MonthOpen, c.MonthClose = parseDatesOpen(col("dates_open"))
	applyAmenities(&c, strings.Fields(col("amenities")))

	if err := c.Prepare(); err != nil {
		return c, err
	}
	return c, nil
}

func parseRequiredFloat(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("value is required")
	}
	return strconv.ParseFloat(value, 64)
}

func parseOptionalFloat(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseOptionalInt(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func normalizeString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

var monthAbbrev = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// parseDatesOpen reads season strings such as "early may-late sep". Anything
// else leaves both months unset.
func parseDatesOpen(value string) (*int, *int) {
	parts := strings.Split(strings.ToLower(value), "-")
	if len(parts) != 2 {
		return nil, nil
	}
	open, ok := seasonMonth(parts[0])
	if !ok {
		return nil, nil
	}
	closeMonth, ok := seasonMonth(parts[1])
	if !ok {
		return nil, nil
	}
	return &open, &closeMonth
}

func seasonMonth(part string) (int, bool) {
	fields := strings.Fields(part)
	if len(fields) == 0 {
		return 0, false
	}
	word := fields[len(fields)-1]
	if len(word) > 3 {
		word = word[:3]
	}
	m, ok := monthAbbrev[word]
	return m, ok
}

// applyAmenities maps the amenity legend onto the campsite flags. Unknown
// codes are ignored.
func applyAmenities(c *entity.Campsite, codes []string) {
	setHookups := func(water, electric, sewer bool) {
		c.HasWaterHookup = boolPtr(water)
		c.HasElectricHookup = boolPtr(electric)
		c.HasSewerHookup = boolPtr(sewer)
		c.HasRVHookup = boolPtr(water || electric || sewer)
	}
	setToilets := func(t entity.ToiletType) {
		c.HasToilets = boolPtr(true)
		c.ToiletType = &t
	}

	for _, code := range codes {
		switch strings.ToUpper(code) {
		case "NH":
			setHookups(false, false, false)
		case "E":
			setHookups(false, true, false)
		case "WE":
			setHookups(true, true, false)
		case "WES":
			setHookups(true, true, true)
		case "DP":
			c.HasSanitaryDump = boolPtr(true)
		case "ND":
			c.HasSanitaryDump = boolPtr(false)
		case "FT":
			setToilets("flush")
		case "VT":
			setToilets("vault")
		case "FTVT":
			setToilets("mixed")
		case "PT":
			setToilets("pit")
		case "NT":
			c.HasToilets = boolPtr(false)
			c.ToiletType = nil
		case "DW":
			c.HasDrinkingWater = boolPtr(true)
		case "NW":
			c.HasDrinkingWater = boolPtr(false)
		case "SH":
			c.HasShowers = boolPtr(true)
		case "NS":
			c.HasShowers = boolPtr(false)
		case "RS":
			c.AcceptsReservations = boolPtr(true)
		case "NR":
			c.AcceptsReservations = boolPtr(false)
		case "PA":
			c.AcceptsPets = boolPtr(true)
		case "NP":
			c.AcceptsPets = boolPtr(false)
		case "L$":
			c.LowNoFee = boolPtr(true)
		}
	}
}

func boolPtr(v bool) *bool {
	return &v
}
