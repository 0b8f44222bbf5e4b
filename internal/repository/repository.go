package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/campsites/api/internal/query"
)

var (
	// ErrNotFound is returned when no row matches the id.
	ErrNotFound = errors.New("record not found")
	// ErrWriteConflict is returned when the database rejects a write.
	ErrWriteConflict = errors.New("write rejected by constraint")
)

// Repository persists one entity type.
type Repository[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, filter query.Filter) ([]T, int, error)
	Create(ctx context.Context, item *T) error
	BulkCreate(ctx context.Context, items []T) (int, error)
	Update(ctx context.Context, id uuid.UUID, item *T) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// maxParams is the Postgres limit on bind parameters per statement.
const maxParams = 65535

// PGXRepository implements Repository over a pgx pool.
type PGXRepository[T any] struct {
	pool  pgxPool
	table *Table[T]
}

// NewPGXRepository wires a pgx backed repository for the given table.
func NewPGXRepository[T any](pool *pgxpool.Pool, table *Table[T]) *PGXRepository[T] {
	return &PGXRepository[T]{pool: pool, table: table}
}

// Get fetches a single row by id.
func (r *PGXRepository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", r.table.selectList(), r.table.name(), r.table.idColumn())
	item, err := r.table.Scan(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, classify("get "+r.table.name(), err)
	}
	return item, nil
}

// List counts all matching rows and fetches the requested page from the same
// snapshot.
func (r *PGXRepository[T]) List(ctx context.Context, filter query.Filter) ([]T, int, error) {
	schema := r.table.Schema
	args := &query.Args{}
	where := schema.Where(filter, args)
	if where != "" {
		where = " WHERE " + where
	}
	countArgs := append([]any(nil), args.Values()...)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, fmt.Errorf("start list tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int
	countSQL := "SELECT count(*) FROM " + r.table.name() + where
	if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table.name(), err)
	}

	var page strings.Builder
	page.WriteString("SELECT ")
	page.WriteString(r.table.selectList())
	page.WriteString(" FROM ")
	page.WriteString(r.table.name())
	page.WriteString(where)
	page.WriteString(" ORDER BY ")
	page.WriteString(schema.OrderBy(filter))
	page.WriteString(" LIMIT ")
	page.WriteString(args.Add(filter.Limit))
	page.WriteString(" OFFSET ")
	page.WriteString(args.Add(filter.Offset))

	rows, err := tx.Query(ctx, page.String(), args.Values()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table.name(), err)
	}
	items, err := r.table.scanAll(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table.name(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit list tx: %w", err)
	}
	return items, total, nil
}

// Create inserts one row. The caller assigns the id.
func (r *PGXRepository[T]) Create(ctx context.Context, item *T) error {
	if item == nil {
		return fmt.Errorf("%s payload is nil", r.table.name())
	}
	args := &query.Args{}
	sql, err := r.table.insert([]T{*item}, args)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, sql, args.Values()...); err != nil {
		return classify("insert "+r.table.name(), err)
	}
	return nil
}

// BulkCreate inserts all items in one transaction using multi-row INSERTs.
// Nothing is persisted when any row fails.
func (r *PGXRepository[T]) BulkCreate(ctx context.Context, items []T) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("start bulk insert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	chunk := r.table.rowsPerStatement()
	for start := 0; start < len(items); start += chunk {
		end := min(start+chunk, len(items))
		args := &query.Args{}
		sql, err := r.table.insert(items[start:end], args)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(ctx, sql, args.Values()...); err != nil {
			return 0, classify(fmt.Sprintf("bulk insert %s rows %d-%d", r.table.name(), start, end-1), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classify("commit bulk insert", err)
	}
	return len(items), nil
}

// Update replaces every column except the id and returns the stored row.
func (r *PGXRepository[T]) Update(ctx context.Context, id uuid.UUID, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("%s payload is nil", r.table.name())
	}
	args := &query.Args{}
	idParam := args.Add(id)
	sets, err := r.table.assignments(item, args)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
		r.table.name(), sets, r.table.idColumn(), idParam, r.table.selectList())

	updated, err := r.table.Scan(r.pool.QueryRow(ctx, sql, args.Values()...))
	if err != nil {
		return nil, classify("update "+r.table.name(), err)
	}
	return updated, nil
}

// Delete removes a row by id.
func (r *PGXRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.table.name(), r.table.idColumn())
	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return classify("delete "+r.table.name(), err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// classify maps driver errors onto the repository sentinels. SQLSTATE classes
// 22 (data exception) and 23 (integrity violation) are write conflicts.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return fmt.Errorf("%s: %w: %s", op, ErrWriteConflict, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
