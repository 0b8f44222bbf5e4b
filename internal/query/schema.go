// Package query translates declared list filters into parameterized SQL and into
// an equivalent in-memory evaluation.
//
// A filter key is a field name with an optional modifier suffix:
//
//	__lt  field <= value (inclusive upper bound)
//	__gt  field >= value (inclusive lower bound)
//	__ct  case-insensitive substring match
//
// Keys without a suffix compare with equality, or with set membership when the
// parameter is declared as a list.
package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Kind is the value type of a field.
type Kind int

const (
	KindString Kind = iota + 1
	KindEnum
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Op is the comparison a predicate applies.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpLTE
	OpGTE
	OpContains
)

const (
	suffixLT = "__lt"
	suffixGT = "__gt"
	suffixCT = "__ct"
)

// Reserved query keys that drive paging, ordering and proximity instead of predicates.
const (
	KeyLimit         = "limit"
	KeyOffset        = "offset"
	KeySortBy        = "sort_by"
	KeySortDir       = "sort_dir"
	KeyDistanceValue = "distance_value"
	KeyDistanceUnits = "distance_units"
	KeyDistanceLat   = "distance_lat"
	KeyDistanceLon   = "distance_lon"
)

// Pagination defaults.
const (
	DefaultLimit  = 25
	DefaultOffset = 0
)

var reservedKeys = map[string]struct{}{
	KeyLimit: {}, KeyOffset: {}, KeySortBy: {}, KeySortDir: {},
	KeyDistanceValue: {}, KeyDistanceUnits: {}, KeyDistanceLat: {}, KeyDistanceLon: {},
}

// Field maps an attribute to its column and a typed accessor.
//
// Get returns nil for NULL and otherwise a string (KindString, KindEnum), int,
// float64 or bool.
type Field[T any] struct {
	Column string
	Kind   Kind
	// Enum lists the allowed values in declaration order; Postgres sorts enums by it.
	Enum []string
	// Cast names the Postgres type used when comparing against text parameters.
	Cast string
	Get  func(*T) any
}

// Param declares an accepted filter key.
type Param struct {
	Key  string
	List bool
}

// Schema is the filter table for one entity.
type Schema[T any] struct {
	Table       string
	IDColumn    string
	Fields      map[string]Field[T]
	Params      []Param
	SortKeys    []string
	DefaultSort string
	GeoColumn   string
	Point       func(*T) orb.Point
	ID          func(*T) uuid.UUID

	params    map[string]compiledParam
	sortable  map[string]struct{}
	enumIndex map[string]map[string]int
}

type compiledParam struct {
	field string
	op    Op
}

// MustCompile is Compile for package-level schema declarations.
func MustCompile[T any](s *Schema[T]) *Schema[T] {
	if err := s.Compile(); err != nil {
		panic(err)
	}
	return s
}

// Compile checks every declared filter and sort key against the field set.
func (s *Schema[T]) Compile() error {
	if s.Table == "" {
		return fmt.Errorf("schema: table name is required")
	}
	if s.IDColumn == "" {
		s.IDColumn = "id"
	}
	if s.ID == nil {
		return fmt.Errorf("schema %s: id accessor is required", s.Table)
	}
	if s.GeoColumn != "" && s.Point == nil {
		return fmt.Errorf("schema %s: geo column %q needs a point accessor", s.Table, s.GeoColumn)
	}

	s.enumIndex = make(map[string]map[string]int)
	for name, f := range s.Fields {
		if f.Column == "" || f.Get == nil {
			return fmt.Errorf("schema %s: field %q needs a column and accessor", s.Table, name)
		}
		if f.Kind == KindEnum {
			if len(f.Enum) == 0 {
				return fmt.Errorf("schema %s: enum field %q has no values", s.Table, name)
			}
			idx := make(map[string]int, len(f.Enum))
			for i, v := range f.Enum {
				idx[v] = i
			}
			s.enumIndex[name] = idx
		}
	}

	s.params = make(map[string]compiledParam, len(s.Params))
	for _, p := range s.Params {
		if _, ok := reservedKeys[p.Key]; ok {
			return fmt.Errorf("schema %s: %q is a reserved key", s.Table, p.Key)
		}
		if _, dup := s.params[p.Key]; dup {
			return fmt.Errorf("schema %s: duplicate filter %q", s.Table, p.Key)
		}
		name, op := splitKey(p.Key)
		f, ok := s.Fields[name]
		if !ok {
			return fmt.Errorf("schema %s: filter %q refers to unknown field %q", s.Table, p.Key, name)
		}
		if p.List {
			if op != OpEq {
				return fmt.Errorf("schema %s: list filter %q cannot carry a modifier", s.Table, p.Key)
			}
			op = OpIn
		}
		switch op {
		case OpContains:
			if f.Kind != KindString {
				return fmt.Errorf("schema %s: %q needs a string field, %q is %s", s.Table, p.Key, name, f.Kind)
			}
		case OpLTE, OpGTE:
			if f.Kind != KindInt && f.Kind != KindFloat {
				return fmt.Errorf("schema %s: %q needs a numeric field, %q is %s", s.Table, p.Key, name, f.Kind)
			}
		}
		s.params[p.Key] = compiledParam{field: name, op: op}
	}

	s.sortable = make(map[string]struct{}, len(s.SortKeys))
	for _, k := range s.SortKeys {
		if _, ok := s.Fields[k]; !ok {
			return fmt.Errorf("schema %s: sort key %q is not a field", s.Table, k)
		}
		s.sortable[k] = struct{}{}
	}
	if _, ok := s.sortable[s.DefaultSort]; !ok {
		return fmt.Errorf("schema %s: default sort %q is not a sort key", s.Table, s.DefaultSort)
	}

	return nil
}

// Defaults returns the filter used when no query parameters are given.
func (s *Schema[T]) Defaults() Filter {
	return Filter{
		SortBy:  s.DefaultSort,
		SortDir: Asc,
		Limit:   DefaultLimit,
		Offset:  DefaultOffset,
	}
}

func splitKey(key string) (string, Op) {
	switch {
	case strings.HasSuffix(key, suffixLT):
		return strings.TrimSuffix(key, suffixLT), OpLTE
	case strings.HasSuffix(key, suffixGT):
		return strings.TrimSuffix(key, suffixGT), OpGTE
	case strings.HasSuffix(key, suffixCT):
		return strings.TrimSuffix(key, suffixCT), OpContains
	default:
		return key, OpEq
	}
}
