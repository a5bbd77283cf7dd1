// Package mssql implements a Microsoft SQL Server storage.Executor on
// go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mssqldb "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	msddl "casmidb/internal/storage/mssql/ddl"
	"casmidb/pkg/sqlgen"
	"casmidb/pkg/storage"
)

// Config holds MSSQL executor configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed implementation of storage.Executor.
type Repository struct {
	*storage.SQLDB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{SQLDB: storage.NewSQLDB("mssql", db), cfg: cfg}, closeFn, nil
}

func (r *Repository) Kind() string { return "mssql" }

func (r *Repository) Dialect() sqlgen.Dialect { return msddl.Dialect{} }

// TableExists checks INFORMATION_SCHEMA.TABLES. A dotted name selects the
// schema; otherwise the login's default schema is used.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	q := "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = SCHEMA_NAME() AND TABLE_NAME = @p1"
	args := []any{table}
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		q = "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2"
		schema := table[:i]
		if j := strings.LastIndexByte(schema, '.'); j >= 0 {
			schema = schema[j+1:]
		}
		args = []any{schema, table[i+1:]}
	}

	var n int
	if err := r.DB().GetContext(ctx, &n, q, args...); err != nil {
		return false, &storage.BackendError{Kind: "mssql", Op: "table exists", Err: err}
	}
	return n > 0, nil
}

// IsTableExists recognises error 2714 ("There is already an object named
// ..."), reported when two sessions pass the OBJECT_ID guard together.
func (r *Repository) IsTableExists(err error) bool {
	var msErr mssqldb.Error
	return errors.As(err, &msErr) && msErr.Number == 2714
}
