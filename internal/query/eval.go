package query

import (
	"sort"
	"strings"

	"github.com/octobees/campsites/api/internal/geo"
)

// Match reports whether item satisfies every predicate of f. A NULL attribute
// never matches, as in SQL.
func (s *Schema[T]) Match(f Filter, item *T) bool {
	for _, p := range f.Predicates {
		field := s.Fields[p.Field]
		v := field.Get(item)
		if v == nil {
			return false
		}

		switch p.Op {
		case OpEq:
			if s.compare(p.Field, field, v, p.Value) != 0 {
				return false
			}
		case OpIn:
			list, _ := p.Value.([]any)
			found := false
			for _, candidate := range list {
				if s.compare(p.Field, field, v, candidate) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case OpLTE:
			if toFloat(v) > toFloat(p.Value) {
				return false
			}
		case OpGTE:
			if toFloat(v) < toFloat(p.Value) {
				return false
			}
		case OpContains:
			hay, _ := v.(string)
			needle, _ := p.Value.(string)
			if !strings.Contains(strings.ToLower(hay), strings.ToLower(needle)) {
				return false
			}
		}
	}

	if f.Distance != nil && s.Point != nil {
		d := f.Distance
		if geo.SphereDistance(s.Point(item), geo.NewPoint(d.Lon, d.Lat)) >= d.Meters() {
			return false
		}
	}
	return true
}

// Less orders items the way OrderBy does in Postgres: NULLs last when ascending,
// first when descending, enums by declaration order, ties by id.
func (s *Schema[T]) Less(f Filter, a, b *T) bool {
	key := f.SortBy
	if _, ok := s.sortable[key]; !ok {
		key = s.DefaultSort
	}
	field := s.Fields[key]
	desc := f.SortDir == Desc

	va, vb := field.Get(a), field.Get(b)
	switch {
	case va == nil && vb == nil:
	case va == nil:
		return desc
	case vb == nil:
		return !desc
	default:
		c := s.compare(key, field, va, vb)
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}

	return strings.Compare(s.ID(a).String(), s.ID(b).String()) < 0
}

// Apply filters, orders and pages items in memory. The returned total is the
// number of matches before limit/offset.
func (s *Schema[T]) Apply(items []T, f Filter) ([]T, int) {
	matched := make([]T, 0, len(items))
	for i := range items {
		if s.Match(f, &items[i]) {
			matched = append(matched, items[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return s.Less(f, &matched[i], &matched[j])
	})
	return Window(matched, f), len(matched)
}

// Window applies offset then limit.
func Window[T any](items []T, f Filter) []T {
	if f.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if f.Limit >= 0 && f.Limit < end-f.Offset {
		end = f.Offset + f.Limit
	}
	return items[f.Offset:end]
}

func (s *Schema[T]) compare(name string, field Field[T], a, b any) int {
	switch field.Kind {
	case KindInt, KindFloat:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case KindBool:
		ba, _ := a.(bool)
		bb, _ := b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case KindEnum:
		sa, _ := a.(string)
		sb, _ := b.(string)
		idx := s.enumIndex[name]
		ia, oka := idx[sa]
		ib, okb := idx[sb]
		if oka && okb {
			return ia - ib
		}
		return strings.Compare(sa, sb)
	default:
		sa, _ := a.(string)
		sb, _ := b.(string)
		return strings.Compare(sa, sb)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
