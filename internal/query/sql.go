package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/octobees/campsites/api/internal/geo"
)

// Args accumulates positional parameters and hands out $n placeholders.
type Args struct {
	values []any
}

// Add appends a parameter and returns its placeholder.
func (a *Args) Add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// Values returns the parameters in placeholder order.
func (a *Args) Values() []any {
	return a.values
}

// Where renders the conjunction of all predicates, or "" when there are none.
func (s *Schema[T]) Where(f Filter, args *Args) string {
	clauses := make([]string, 0, len(f.Predicates)+1)
	for _, p := range f.Predicates {
		clauses = append(clauses, s.predicateSQL(p, args))
	}
	if f.Distance != nil && s.GeoColumn != "" {
		d := f.Distance
		lon := args.Add(d.Lon)
		lat := args.Add(d.Lat)
		meters := args.Add(d.Meters())
		clauses = append(clauses, fmt.Sprintf(
			"ST_DistanceSphere(%s, ST_SetSRID(ST_MakePoint(%s, %s), %d)) < %s",
			s.GeoColumn, lon, lat, geo.SRID, meters,
		))
	}
	return strings.Join(clauses, " AND ")
}

func (s *Schema[T]) predicateSQL(p Predicate, args *Args) string {
	field := s.Fields[p.Field]
	col := field.Column

	switch p.Op {
	case OpIn:
		list, _ := p.Value.([]any)
		if field.Cast != "" {
			return fmt.Sprintf("%s = ANY(%s::text[]::%s[])", col, args.Add(stringSlice(list)), field.Cast)
		}
		return fmt.Sprintf("%s = ANY(%s)", col, args.Add(typedSlice(field.Kind, list)))
	case OpLTE:
		return fmt.Sprintf("%s <= %s", col, args.Add(p.Value))
	case OpGTE:
		return fmt.Sprintf("%s >= %s", col, args.Add(p.Value))
	case OpContains:
		needle, _ := p.Value.(string)
		return fmt.Sprintf("strpos(lower(%s), %s) > 0", col, args.Add(strings.ToLower(needle)))
	default:
		if field.Cast != "" {
			return fmt.Sprintf("%s = %s::text::%s", col, args.Add(p.Value), field.Cast)
		}
		return fmt.Sprintf("%s = %s", col, args.Add(p.Value))
	}
}

// OrderBy renders the ORDER BY list. The id column breaks ties so pages are stable.
func (s *Schema[T]) OrderBy(f Filter) string {
	key := f.SortBy
	if _, ok := s.sortable[key]; !ok {
		key = s.DefaultSort
	}
	dir := "ASC"
	if f.SortDir == Desc {
		dir = "DESC"
	}
	col := s.Fields[key].Column
	if s.Fields[key].Kind == KindString {
		// byte order, as the in-memory evaluator compares strings
		col += ` COLLATE "C"`
	}
	return fmt.Sprintf("%s %s, %s ASC", col, dir, s.IDColumn)
}

func stringSlice(list []any) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func typedSlice(kind Kind, list []any) any {
	switch kind {
	case KindInt:
		out := make([]int, 0, len(list))
		for _, v := range list {
			n, _ := v.(int)
			out = append(out, n)
		}
		return out
	case KindFloat:
		out := make([]float64, 0, len(list))
		for _, v := range list {
			n, _ := v.(float64)
			out = append(out, n)
		}
		return out
	case KindBool:
		out := make([]bool, 0, len(list))
		for _, v := range list {
			b, _ := v.(bool)
			out = append(out, b)
		}
		return out
	default:
		return stringSlice(list)
	}
}
