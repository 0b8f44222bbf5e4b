package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/octobees/campsites/api/internal/geo"
)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Predicate is a single conjunctive condition. Value holds []any for OpIn.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Distance keeps rows within Value Units of (Lat, Lon).
type Distance struct {
	Value float64
	Units geo.Unit
	Lat   float64
	Lon   float64
}

// Meters is the radius converted to meters.
func (d Distance) Meters() float64 {
	return geo.ToMeters(d.Value, d.Units)
}

// Filter is a parsed list request.
type Filter struct {
	Predicates []Predicate
	Distance   *Distance
	SortBy     string
	SortDir    Direction
	Limit      int
	Offset     int
	// PartialDistance is set when some but not all distance parameters were supplied.
	PartialDistance bool
}

// ValidationError reports a rejected query parameter.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var distanceKeys = []string{KeyDistanceValue, KeyDistanceUnits, KeyDistanceLat, KeyDistanceLon}

// Parse builds a Filter from query parameters. Unknown keys and malformed values
// are rejected; empty values count as absent.
func (s *Schema[T]) Parse(values url.Values) (Filter, error) {
	f := s.Defaults()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	distance := map[string]string{}
	for _, key := range keys {
		vals := nonEmpty(values[key])
		if len(vals) == 0 {
			continue
		}
		last := vals[len(vals)-1]

		switch key {
		case KeyLimit, KeyOffset:
			n, err := strconv.Atoi(last)
			if err != nil || n < 0 {
				return Filter{}, ValidationError{Field: key, Message: "must be a non-negative integer"}
			}
			if key == KeyLimit {
				f.Limit = n
			} else {
				f.Offset = n
			}
		case KeySortBy:
			if _, ok := s.sortable[last]; !ok {
				return Filter{}, ValidationError{Field: key, Message: fmt.Sprintf("cannot sort by %q", last)}
			}
			f.SortBy = last
		case KeySortDir:
			switch dir := Direction(strings.ToLower(last)); dir {
			case Asc, Desc:
				f.SortDir = dir
			default:
				return Filter{}, ValidationError{Field: key, Message: "must be asc or desc"}
			}
		case KeyDistanceValue, KeyDistanceUnits, KeyDistanceLat, KeyDistanceLon:
			if s.GeoColumn == "" {
				return Filter{}, ValidationError{Field: key, Message: "distance filtering is not supported"}
			}
			distance[key] = last
		default:
			p, ok := s.params[key]
			if !ok {
				return Filter{}, ValidationError{Field: key, Message: "unknown filter"}
			}
			pred, err := s.predicate(key, p, vals)
			if err != nil {
				return Filter{}, err
			}
			f.Predicates = append(f.Predicates, pred)
		}
	}

	switch len(distance) {
	case 0:
	case len(distanceKeys):
		d, err := parseDistance(distance)
		if err != nil {
			return Filter{}, err
		}
		f.Distance = &d
	default:
		f.PartialDistance = true
	}

	return f, nil
}

func (s *Schema[T]) predicate(key string, p compiledParam, vals []string) (Predicate, error) {
	field := s.Fields[p.field]
	if p.op == OpIn {
		list := make([]any, 0, len(vals))
		for _, raw := range vals {
			v, err := s.parseValue(p.field, field, raw)
			if err != nil {
				return Predicate{}, ValidationError{Field: key, Message: err.Error()}
			}
			list = append(list, v)
		}
		return Predicate{Field: p.field, Op: OpIn, Value: list}, nil
	}

	if len(vals) > 1 {
		return Predicate{}, ValidationError{Field: key, Message: "expects a single value"}
	}
	v, err := s.parseValue(p.field, field, vals[0])
	if err != nil {
		return Predicate{}, ValidationError{Field: key, Message: err.Error()}
	}
	return Predicate{Field: p.field, Op: p.op, Value: v}, nil
}

func (s *Schema[T]) parseValue(name string, field Field[T], raw string) (any, error) {
	switch field.Kind {
	case KindString:
		return raw, nil
	case KindEnum:
		if _, ok := s.enumIndex[name][raw]; !ok {
			return nil, fmt.Errorf("invalid value %q", raw)
		}
		return raw, nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", raw)
		}
		return n, nil
	case KindFloat:
		v, err := parseFinite(raw)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", raw)
		}
		return v, nil
	case KindBool:
		return parseBool(raw)
	default:
		return nil, fmt.Errorf("unsupported field kind")
	}
}

func parseDistance(raw map[string]string) (Distance, error) {
	var d Distance
	var err error

	if d.Value, err = parseFinite(raw[KeyDistanceValue]); err != nil {
		return Distance{}, ValidationError{Field: KeyDistanceValue, Message: "expected a number"}
	}
	if d.Units, err = geo.ParseUnit(raw[KeyDistanceUnits]); err != nil {
		return Distance{}, ValidationError{Field: KeyDistanceUnits, Message: "must be mi or km"}
	}
	if d.Lat, err = parseFinite(raw[KeyDistanceLat]); err != nil || d.Lat < -90 || d.Lat > 90 {
		return Distance{}, ValidationError{Field: KeyDistanceLat, Message: "expected a latitude between -90 and 90"}
	}
	if d.Lon, err = parseFinite(raw[KeyDistanceLon]); err != nil || d.Lon < -180 || d.Lon > 180 {
		return Distance{}, ValidationError{Field: KeyDistanceLon, Message: "expected a longitude between -180 and 180"}
	}
	return d, nil
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts.
func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %q", raw)
	}
}

func nonEmpty(vals []string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
