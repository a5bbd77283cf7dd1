package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"casmidb/pkg/storage"
)

// TestPostgresStorageRegistrationUsesNewRepositoryHook verifies that the
// "postgres" backend registered in init() uses the newRepository hook and
// that wrappedRepo delegates Close.
func TestPostgresStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	ctx := context.Background()

	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotDSN string
		closed bool
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotDSN = cfg.DSN
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}

	dsn := "postgres://u:p@localhost:5432/db?sslmode=disable"
	exec, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if gotDSN != dsn {
		t.Fatalf("hook DSN = %q, want %q", gotDSN, dsn)
	}
	if got := exec.Dialect().Placeholder(2); got != "$2" {
		t.Fatalf("Dialect().Placeholder(2) = %q, want $2", got)
	}

	exec.Close()
	if !closed {
		t.Fatalf("wrappedRepo.Close() did not invoke closeFn")
	}
}

func TestNewRepositoryHookPropagatesErrors(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	want := errors.New("dial refused")
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return nil, nil, want
	}

	if _, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "x"}); !errors.Is(err, want) {
		t.Fatalf("storage.New() error = %v, want %v", err, want)
	}
}

func TestIsTableExists(t *testing.T) {
	t.Parallel()

	r := &Repository{}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "duplicate table", err: &pgconn.PgError{Code: "42P07"}, want: true},
		{name: "wrapped unique violation", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "syntax error", err: &pgconn.PgError{Code: "42601"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.IsTableExists(tt.err); got != tt.want {
				t.Fatalf("IsTableExists(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapAddsDetail(t *testing.T) {
	t.Parallel()

	err := wrap("exec", &pgconn.PgError{Code: "23502", Message: "null value", Detail: "Failing row contains (null)."})
	var be *storage.BackendError
	if !errors.As(err, &be) || be.Kind != "postgres" || be.Op != "exec" {
		t.Fatalf("wrap() = %#v, want *storage.BackendError", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("wrap() lost the *pgconn.PgError")
	}
}
