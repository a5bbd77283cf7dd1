package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SQLDB implements Exec and Query over database/sql through sqlx. The
// sqlite, mysql and mssql backends embed it.
type SQLDB struct {
	kind string
	db   *sqlx.DB
}

// NewSQLDB wraps db; kind labels errors.
func NewSQLDB(kind string, db *sql.DB) *SQLDB {
	return &SQLDB{kind: kind, db: sqlx.NewDb(db, kind)}
}

// DB returns the underlying handle.
func (s *SQLDB) DB() *sqlx.DB { return s.db }

func (s *SQLDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &BackendError{Kind: s.kind, Op: "exec", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *SQLDB) Query(ctx context.Context, query string, args ...any) (Cursor, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, &BackendError{Kind: s.kind, Op: "query", Err: err}
	}
	return &sqlCursor{kind: s.kind, rows: rows}, nil
}

// sqlCursor maps each row into a Record. MapScan keeps the driver's native
// types; database/sql copies []byte values.
type sqlCursor struct {
	kind string
	rows *sqlx.Rows
	cur  Record
	err  error
}

func (c *sqlCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	rec := Record{}
	if err := c.rows.MapScan(rec); err != nil {
		c.err = &BackendError{Kind: c.kind, Op: "scan", Err: err}
		return false
	}
	c.cur = rec
	return true
}

func (c *sqlCursor) Row() Row { return c.cur }

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return &BackendError{Kind: c.kind, Op: "rows", Err: err}
	}
	return nil
}

func (c *sqlCursor) Close() error { return c.rows.Close() }
