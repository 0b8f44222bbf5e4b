package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/geo"
	"github.com/octobees/campsites/api/internal/query"
)

type stubPool struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	beginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (s *stubPool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRowFunc != nil {
		return s.queryRowFunc(ctx, query, args...)
	}
	return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
}

func (s *stubPool) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if s.queryFunc != nil {
		return s.queryFunc(ctx, query, args...)
	}
	return nil, errors.New("query not implemented")
}

func (s *stubPool) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.execFunc != nil {
		return s.execFunc(ctx, query, args...)
	}
	return pgconn.CommandTag{}, errors.New("exec not implemented")
}

func (s *stubPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if s.beginTxFunc != nil {
		return s.beginTxFunc(ctx, txOptions)
	}
	return nil, errors.New("begin tx not implemented")
}

// stubTx records statements; methods it does not override panic through the
// nil embedded interface.
type stubTx struct {
	pgx.Tx
	pool       *stubPool
	committed  bool
	rolledBack bool
}

func (s *stubTx) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return s.pool.QueryRow(ctx, query, args...)
}

func (s *stubTx) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return s.pool.Query(ctx, query, args...)
}

func (s *stubTx) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return s.pool.Exec(ctx, query, args...)
}

func (s *stubTx) Commit(context.Context) error {
	s.committed = true
	return nil
}

func (s *stubTx) Rollback(context.Context) error {
	if !s.committed {
		s.rolledBack = true
	}
	return nil
}

type stubRow struct {
	scan func(dest ...any) error
}

func (s *stubRow) Scan(dest ...any) error {
	if s.scan != nil {
		return s.scan(dest...)
	}
	return nil
}

type stubRows struct {
	scans []func(dest ...any) error
	idx   int
	err   error
}

func (s *stubRows) Close() {}

func (s *stubRows) Err() error { return s.err }

func (s *stubRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (s *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (s *stubRows) Next() bool {
	if s.err != nil {
		return false
	}
	if s.idx < len(s.scans) {
		s.idx++
		return true
	}
	return false
}

func (s *stubRows) Scan(dest ...any) error {
	if s.idx == 0 || s.idx > len(s.scans) {
		return errors.New("scan called out of order")
	}
	return s.scans[s.idx-1](dest...)
}

func (s *stubRows) Values() ([]any, error) { return nil, nil }

func (s *stubRows) RawValues() [][]byte { return nil }

func (s *stubRows) Conn() *pgx.Conn { return nil }

// fill copies values into scan destinations; a nil value zeroes the target.
func fill(dest []any, values ...any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}

func ewkb(t *testing.T, lon, lat float64) []byte {
	t.Helper()
	h, err := geo.EWKBHex(geo.NewPoint(lon, lat))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return raw
}

func campsiteRow(t *testing.T, id uuid.UUID, name string) func(dest ...any) error {
	code := "CT01"
	ctype := "SP"
	elevation := 120
	showers := true
	raw := ewkb(t, -72.556, 41.262)
	return func(dest ...any) error {
		values := []any{id, &code, name, "CT", "USA", &ctype, -72.556, 41.262, "composite"}
		values = append(values, nil, nil, nil, nil, &elevation, nil, nil, nil, nil)
		values = append(values, nil, nil, nil, nil, nil, nil, nil, nil, nil, &showers, nil, nil, nil)
		values = append(values, raw)
		return fill(dest, values...)
	}
}

func sampleCampsite() entity.Campsite {
	c := entity.Campsite{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Name:      "Hammonasset Beach",
		State:     "CT",
		Lon:       -72.556,
		Lat:       41.262,
		Composite: "HAMMONASSET BEACH SP",
	}
	if err := c.Prepare(); err != nil {
		panic(err)
	}
	return c
}

func TestPGXRepository_Get(t *testing.T) {
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	var captured string
	repo := &PGXRepository[entity.Campsite]{table: CampsiteTable, pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			captured = query
			if args[0] != id {
				t.Fatalf("unexpected id arg %v", args[0])
			}
			return &stubRow{scan: campsiteRow(t, id, "Hammonasset")}
		},
	}}

	c, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Hammonasset" || c.State != "CT" || c.CampsiteType == nil || *c.CampsiteType != "SP" {
		t.Fatalf("unexpected campsite: %+v", c)
	}
	if c.HasShowers == nil || !*c.HasShowers || c.ElevationFt == nil || *c.ElevationFt != 120 {
		t.Fatalf("optional columns not scanned: %+v", c)
	}
	if c.Geo.Lon() != -72.556 || c.Geo.Lat() != 41.262 {
		t.Fatalf("unexpected geo %v", c.Geo)
	}
	if !strings.Contains(captured, "state::text") || !strings.Contains(captured, "ST_AsEWKB(geo)") {
		t.Fatalf("unexpected select list: %s", captured)
	}

	repo.pool = &stubPool{}
	if _, err := repo.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGXRepository_List(t *testing.T) {
	pool := &stubPool{}
	tx := &stubTx{pool: pool}
	var queries []string
	var pageArgs []any
	pool.beginTxFunc = func(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
		if opts.IsoLevel != pgx.RepeatableRead || opts.AccessMode != pgx.ReadOnly {
			t.Fatalf("unexpected tx options %+v", opts)
		}
		return tx, nil
	}
	pool.queryRowFunc = func(ctx context.Context, query string, args ...any) pgx.Row {
		queries = append(queries, query)
		if len(args) != 1 {
			t.Fatalf("count should bind only filter args, got %v", args)
		}
		return &stubRow{scan: func(dest ...any) error { return fill(dest, 7) }}
	}
	pool.queryFunc = func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
		queries = append(queries, query)
		pageArgs = args
		return &stubRows{scans: []func(dest ...any) error{
			campsiteRow(t, uuid.New(), "A"),
			campsiteRow(t, uuid.New(), "B"),
		}}, nil
	}

	repo := &PGXRepository[entity.Campsite]{table: CampsiteTable, pool: pool}
	filter := entity.CampsiteSchema.Defaults()
	filter.Predicates = []query.Predicate{{Field: "elevation_ft", Op: query.OpGTE, Value: 1500}}
	filter.Limit, filter.Offset = 2, 4

	items, total, err := repo.List(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 || len(items) != 2 {
		t.Fatalf("expected 2 of 7, got %d of %d", len(items), total)
	}
	if queries[0] != "SELECT count(*) FROM campsites WHERE elevation_ft >= $1" {
		t.Fatalf("unexpected count query: %s", queries[0])
	}
	if !strings.HasSuffix(queries[1], `WHERE elevation_ft >= $1 ORDER BY name COLLATE "C" ASC, id ASC LIMIT $2 OFFSET $3`) {
		t.Fatalf("unexpected page query: %s", queries[1])
	}
	if len(pageArgs) != 3 || pageArgs[1] != 2 || pageArgs[2] != 4 {
		t.Fatalf("unexpected page args %v", pageArgs)
	}
	if !tx.committed {
		t.Fatalf("expected read tx to commit")
	}
}

func TestPGXRepository_Create(t *testing.T) {
	var captured string
	var args []any
	repo := &PGXRepository[entity.Campsite]{table: CampsiteTable, pool: &stubPool{
		execFunc: func(ctx context.Context, query string, a ...any) (pgconn.CommandTag, error) {
			captured, args = query, a
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}}

	c := sampleCampsite()
	if err := repo.Create(context.Background(), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(captured, "$4::text::campsite_state_enum") {
		t.Fatalf("state should be cast to its enum: %s", captured)
	}
	if !strings.HasSuffix(captured, "ST_GeomFromEWKB(decode($32, 'hex')))") {
		t.Fatalf("unexpected geo placeholder: %s", captured)
	}
	if len(args) != 32 || args[0] != c.ID || args[4] != "USA" {
		t.Fatalf("unexpected args %v", args)
	}
	if args[1] != nil {
		t.Fatalf("nil code should bind NULL, got %v", args[1])
	}

	if err := repo.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}

func TestPGXRepository_BulkCreateRollsBack(t *testing.T) {
	pool := &stubPool{}
	tx := &stubTx{pool: pool}
	pool.beginTxFunc = func(context.Context, pgx.TxOptions) (pgx.Tx, error) { return tx, nil }
	calls := 0
	pool.execFunc = func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
		calls++
		if calls == 2 {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505", Message: "duplicate key"}
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}

	repo := &PGXRepository[entity.Campsite]{table: CampsiteTable, pool: pool}
	chunk := CampsiteTable.rowsPerStatement()
	items := make([]entity.Campsite, chunk+1)
	for i := range items {
		items[i] = sampleCampsite()
		items[i].ID = uuid.New()
	}

	n, err := repo.BulkCreate(context.Background(), items)
	if !errors.Is(err, ErrWriteConflict) {
		t.Fatalf("expected ErrWriteConflict, got %v", err)
	}
	if n != 0 || tx.committed || !tx.rolledBack {
		t.Fatalf("expected rollback, committed=%v rolledBack=%v n=%d", tx.committed, tx.rolledBack, n)
	}
	if calls != 2 {
		t.Fatalf("expected two chunked statements, got %d", calls)
	}
}

func TestPGXRepository_BulkCreateCommits(t *testing.T) {
	pool := &stubPool{}
	tx := &stubTx{pool: pool}
	pool.beginTxFunc = func(context.Context, pgx.TxOptions) (pgx.Tx, error) { return tx, nil }
	var captured string
	pool.execFunc = func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
		captured = query
		if len(args) != 64 {
			t.Fatalf("expected 64 args for two rows, got %d", len(args))
		}
		return pgconn.NewCommandTag("INSERT 0 2"), nil
	}

	repo := &PGXRepository[entity.Campsite]{table: CampsiteTable, pool: pool}
	a, b := sampleCampsite(), sampleCampsite()
	b.ID = uuid.New()
	n, err := repo.BulkCreate(context.Background(), []entity.Campsite{a, b})
	if err != nil || n != 2 {
		t.Fatalf("unexpected result n=%d err=%v", n, err)
	}
	if !tx.committed {
		t.Fatalf("expected commit")
	}
	if !strings.Contains(captured, "), ($33, ") {
		t.Fatalf("expected a multi-row insert: %s", captured)
	}

	if n, err := repo.BulkCreate(context.Background(), nil); n != 0 || err != nil {
		t.Fatalf("empty batch should be a no-op")
	}
}

func TestPGXRepository_Update(t *testing.T) {
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	var captured string
	repo := &PGXRepository[entity.Campsite]{table: CampsiteTable, pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			captured = query
			return &stubRow{scan: campsiteRow(t, id, "Renamed")}
		},
	}}

	c := sampleCampsite()
	updated, err := repo.Update(context.Background(), id, &c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != id || updated.Name != "Renamed" {
		t.Fatalf("unexpected row %+v", updated)
	}
	if !strings.HasPrefix(captured, "UPDATE campsites SET code = $2, name = $3") || !strings.Contains(captured, "WHERE id = $1 RETURNING") {
		t.Fatalf("unexpected update: %s", captured)
	}

	repo.pool = &stubPool{}
	if _, err := repo.Update(context.Background(), id, &c); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGXRepository_Delete(t *testing.T) {
	affected := "DELETE 1"
	repo := &PGXRepository[entity.Campsite]{table: CampsiteTable, pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag(affected), nil
		},
	}}
	if err := repo.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	affected = "DELETE 0"
	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]error{
		"22P02": ErrWriteConflict,
		"23503": ErrWriteConflict,
		"23505": ErrWriteConflict,
	}
	for code, want := range cases {
		if err := classify("op", &pgconn.PgError{Code: code}); !errors.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", code, want, err)
		}
	}
	if err := classify("op", &pgconn.PgError{Code: "40001"}); errors.Is(err, ErrWriteConflict) {
		t.Fatalf("serialization failure is not a write conflict")
	}
	if err := classify("op", pgx.ErrNoRows); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaceTableValuesMatchColumns(t *testing.T) {
	g := entity.GeographicalName{GovtID: "X", Name: "Banff", StateProvince: "AB"}
	if got := len(PlaceTable.Values(&g)); got != len(PlaceTable.Columns) {
		t.Fatalf("values = %d, columns = %d", got, len(PlaceTable.Columns))
	}
	c := sampleCampsite()
	if got := len(CampsiteTable.Values(&c)); got != len(CampsiteTable.Columns) {
		t.Fatalf("values = %d, columns = %d", got, len(CampsiteTable.Columns))
	}
}
