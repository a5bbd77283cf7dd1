package postgres

import (
	"context"

	"casmidb/pkg/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Executor by delegating to the concrete
// *postgres.Repository while providing a Close method that calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Executor = (*wrappedRepo)(nil)
var _ storage.ExistsClassifier = (*wrappedRepo)(nil)

// Close implements storage.Executor.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the "postgres" backend with the storage factory. Its
// dialect is registered by the ddl package it imports.
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Executor, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
