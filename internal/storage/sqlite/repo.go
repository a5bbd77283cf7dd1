package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sqliteddl "casmidb/internal/storage/sqlite/ddl"
	"casmidb/pkg/sqlgen"
	"casmidb/pkg/storage"

	_ "modernc.org/sqlite"
)

// Repository is a SQLite-backed implementation of storage.Executor.
type Repository struct {
	*storage.SQLDB
	cfg Config
}

// NewRepository opens a SQLite database using the provided DSN and returns
// a Repository plus a Close function for cleanup.
//
// The pool is capped at one connection, which keeps an in-memory database
// alive and makes concurrent writers queue instead of failing with
// SQLITE_BUSY.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Ignore the error if the driver build doesn't support it.
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	closeFn := func() { db.Close() }
	return &Repository{SQLDB: storage.NewSQLDB("sqlite", db), cfg: cfg}, closeFn, nil
}

func (r *Repository) Kind() string { return "sqlite" }

func (r *Repository) Dialect() sqlgen.Dialect { return sqliteddl.Dialect{} }

// TableExists looks the table up in sqlite_master by exact name.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := r.DB().GetContext(ctx, &n,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	if err != nil {
		return false, &storage.BackendError{Kind: "sqlite", Op: "table exists", Err: err}
	}
	return n > 0, nil
}
