// Package mysql implements a MySQL-backed storage.Executor on
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	myddl "casmidb/internal/storage/mysql/ddl"
	"casmidb/pkg/sqlgen"
	"casmidb/pkg/storage"
)

// Config holds MySQL executor configuration.
type Config struct {
	// DSN in go-sql-driver form, e.g. "user:pw@tcp(localhost:3306)/casmidb".
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Executor.
type Repository struct {
	*storage.SQLDB
	cfg Config
}

// NormalizeDSN parses dsn and forces the options the executor relies on:
// DATETIME columns scanned as time.Time, in UTC.
func NormalizeDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	c.ParseTime = true
	c.Loc = time.UTC
	return c.FormatDSN(), nil
}

// NewRepository opens a MySQL connection pool and returns a Repository plus
// a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{SQLDB: storage.NewSQLDB("mysql", db), cfg: cfg}, closeFn, nil
}

func (r *Repository) Kind() string { return "mysql" }

func (r *Repository) Dialect() sqlgen.Dialect { return myddl.Dialect{} }

// TableExists checks information_schema.tables in the connection's current
// database, or in the database named by a dotted table name.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	q := "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	args := []any{table}
	if db, name, ok := strings.Cut(table, "."); ok {
		q = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		args = []any{db, name}
	}

	var n int
	if err := r.DB().GetContext(ctx, &n, q, args...); err != nil {
		return false, &storage.BackendError{Kind: "mysql", Op: "table exists", Err: err}
	}
	return n > 0, nil
}

// IsTableExists recognises ER_TABLE_EXISTS_ERROR (1050).
func (r *Repository) IsTableExists(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1050
}
