package repository

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"

	"github.com/octobees/campsites/api/internal/geo"
	"github.com/octobees/campsites/api/internal/query"
)

// Column is a persisted attribute other than the id and geo columns.
type Column struct {
	Name string
	// Cast is the Postgres enum type of the column, if any.
	Cast string
}

// Table describes how an entity maps onto its table.
//
// Rows are read as: id, Columns..., ST_AsEWKB(geo). Values returns one value
// per column in the same order.
type Table[T any] struct {
	Schema  *query.Schema[T]
	Columns []Column
	Values  func(*T) []any
	Scan    func(row pgx.Row) (*T, error)
}

func (t *Table[T]) name() string     { return t.Schema.Table }
func (t *Table[T]) idColumn() string { return t.Schema.IDColumn }

func (t *Table[T]) selectList() string {
	cols := make([]string, 0, len(t.Columns)+2)
	cols = append(cols, t.idColumn())
	for _, c := range t.Columns {
		if c.Cast != "" {
			cols = append(cols, c.Name+"::text")
			continue
		}
		cols = append(cols, c.Name)
	}
	cols = append(cols, fmt.Sprintf("ST_AsEWKB(%s)", t.Schema.GeoColumn))
	return strings.Join(cols, ", ")
}

func (t *Table[T]) rowsPerStatement() int {
	n := maxParams / (len(t.Columns) + 2)
	return min(n, 1000)
}

func placeholder(c Column, param string) string {
	if c.Cast != "" {
		return param + "::text::" + c.Cast
	}
	return param
}

func geoPlaceholder(param string) string {
	return "ST_GeomFromEWKB(decode(" + param + ", 'hex'))"
}

func (t *Table[T]) row(item *T) ([]any, string, error) {
	values := t.Values(item)
	if len(values) != len(t.Columns) {
		return nil, "", fmt.Errorf("%s: %d values for %d columns", t.name(), len(values), len(t.Columns))
	}
	hex, err := geo.EWKBHex(t.Schema.Point(item))
	if err != nil {
		return nil, "", fmt.Errorf("%s: encode geo: %w", t.name(), err)
	}
	return values, hex, nil
}

func (t *Table[T]) insert(items []T, args *query.Args) (string, error) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.name())
	b.WriteString(" (")
	b.WriteString(t.idColumn())
	for _, c := range t.Columns {
		b.WriteString(", ")
		b.WriteString(c.Name)
	}
	b.WriteString(", ")
	b.WriteString(t.Schema.GeoColumn)
	b.WriteString(") VALUES ")

	for i := range items {
		item := &items[i]
		values, hex, err := t.row(item)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(args.Add(t.Schema.ID(item)))
		for j, c := range t.Columns {
			b.WriteString(", ")
			b.WriteString(placeholder(c, args.Add(values[j])))
		}
		b.WriteString(", ")
		b.WriteString(geoPlaceholder(args.Add(hex)))
		b.WriteString(")")
	}
	return b.String(), nil
}

func (t *Table[T]) assignments(item *T, args *query.Args) (string, error) {
	values, hex, err := t.row(item)
	if err != nil {
		return "", err
	}
	sets := make([]string, 0, len(t.Columns)+1)
	for j, c := range t.Columns {
		sets = append(sets, c.Name+" = "+placeholder(c, args.Add(values[j])))
	}
	sets = append(sets, t.Schema.GeoColumn+" = "+geoPlaceholder(args.Add(hex)))
	return strings.Join(sets, ", "), nil
}

func (t *Table[T]) scanAll(rows pgx.Rows) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := t.Scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanGeo(raw []byte) (orb.Point, error) {
	if len(raw) == 0 {
		return orb.Point{}, fmt.Errorf("geo column is empty")
	}
	return geo.PointFromEWKB(raw)
}

func stringOrNil(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func intOrNil(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func floatOrNil(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolOrNil(value *bool) any {
	if value == nil {
		return nil
	}
	return *value
}

func enumOrNil[E ~string](value *E) any {
	if value == nil {
		return nil
	}
	return string(*value)
}

func enumPtr[E ~string](value *string) *E {
	if value == nil {
		return nil
	}
	e := E(*value)
	return &e
}
