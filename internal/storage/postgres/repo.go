// Package postgres implements a Postgres-backed storage.Executor using a
// pgx v5 connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	pgddl "casmidb/internal/storage/postgres/ddl"
	"casmidb/pkg/sqlgen"
	"casmidb/pkg/storage"
)

// Config holds Postgres executor configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Executor.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The pool is pinged so that a bad DSN fails here rather than on
// first use.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}

	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

func (r *Repository) Kind() string { return "postgres" }

func (r *Repository) Dialect() sqlgen.Dialect { return pgddl.Dialect{} }

func (r *Repository) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, wrap("exec", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) Query(ctx context.Context, query string, args ...any) (storage.Cursor, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("query", err)
	}
	return &cursor{rows: rows}, nil
}

// TableExists checks information_schema.tables. A dotted name selects the
// schema; otherwise the connection's current schema is used.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)`
	args := []any{table}
	if schema, name, ok := strings.Cut(table, "."); ok {
		q = `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`
		args = []any{schema, name}
	}

	var ok bool
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&ok); err != nil {
		return false, wrap("table exists", err)
	}
	return ok, nil
}

// IsTableExists recognises the errors a concurrent CREATE TABLE IF NOT
// EXISTS reports when another session won: duplicate_table (42P07) and a
// unique violation (23505) on the pg_type catalog.
func (r *Repository) IsTableExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "42P07" || pgErr.Code == "23505"
}

func wrap(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		err = fmt.Errorf("%w (%s)", err, pgErr.Detail)
	}
	return &storage.BackendError{Kind: "postgres", Op: op, Err: err}
}

// cursor adapts pgx.Rows to storage.Cursor.
type cursor struct {
	rows pgx.Rows
	cur  storage.Record
	err  error
}

func (c *cursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	vals, err := c.rows.Values()
	if err != nil {
		c.err = wrap("scan", err)
		return false
	}
	fds := c.rows.FieldDescriptions()
	rec := make(storage.Record, len(fds))
	for i, fd := range fds {
		rec[fd.Name] = vals[i]
	}
	c.cur = rec
	return true
}

func (c *cursor) Row() storage.Row { return c.cur }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return wrap("rows", err)
	}
	return nil
}

func (c *cursor) Close() error {
	c.rows.Close()
	return nil
}
