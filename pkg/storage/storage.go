// Package storage defines the SQL executor contract entities are persisted
// through, a registry of executor backends keyed by kind, and helpers shared
// by backends built on database/sql.
//
// The core never opens connections itself: a caller obtains an Executor via
// New (after importing casmidb/pkg/storage/all or a single backend) and hands
// it to the entity package.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"casmidb/pkg/column"
	"casmidb/pkg/sqlgen"
)

// Executor runs statements against one backend.
type Executor interface {
	// Kind returns the backend name, e.g. "sqlite".
	Kind() string
	// Dialect returns the statement dialect for this backend.
	Dialect() sqlgen.Dialect
	// Exec runs a statement and returns the number of affected rows (0 when
	// the driver cannot tell).
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// Query runs a statement returning rows.
	Query(ctx context.Context, query string, args ...any) (Cursor, error)
	// TableExists reports whether table exists, by exact name, in the
	// backend catalog.
	TableExists(ctx context.Context, table string) (bool, error)
	// Close releases the underlying connection pool.
	Close()
}

// Cursor iterates the rows of a query. Callers must Close it.
type Cursor interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// Row gives typed access to the current row.
type Row interface {
	// Get returns the value of field converted to kind.
	Get(kind column.Kind, field string) (column.Value, error)
}

// ErrNoField is returned by Row.Get for a field absent from the row.
var ErrNoField = errors.New("storage: no such field in row")

// Record is a Row backed by a map of raw driver values keyed by field name.
type Record map[string]any

// ErrAmbiguousField is returned by Record.Get when field has no exact match
// and several fields match it case-insensitively.
var ErrAmbiguousField = errors.New("storage: ambiguous field in row")

// Get converts the raw value of field with column.Convert. Lookup falls back
// to a case-insensitive match when it is unique, since some catalogs fold
// identifier case.
func (r Record) Get(kind column.Kind, field string) (column.Value, error) {
	raw, ok := r[field]
	if !ok {
		var matched []string
		for k, v := range r {
			if strings.EqualFold(k, field) {
				matched = append(matched, k)
				raw, ok = v, true
			}
		}
		if len(matched) > 1 {
			sort.Strings(matched)
			return column.Null(), fmt.Errorf("%w: %s matches %v", ErrAmbiguousField, field, matched)
		}
	}
	if !ok {
		return column.Null(), fmt.Errorf("%w: %s", ErrNoField, field)
	}
	v, err := column.Convert(kind, raw)
	if err != nil {
		return column.Null(), fmt.Errorf("storage: field %s: %w", field, err)
	}
	return v, nil
}

// BackendError wraps a failure reported by a backend driver.
type BackendError struct {
	Kind string
	Op   string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ExistsClassifier is implemented by executors that can recognise the error
// a racing CREATE TABLE reports when another session created the table
// first.
type ExistsClassifier interface {
	IsTableExists(err error) bool
}

// EnsureTable creates t when the backend catalog does not list it. It
// reports whether this call created the table.
func EnsureTable(ctx context.Context, exec Executor, t sqlgen.Table) (bool, error) {
	ok, err := exec.TableExists(ctx, t.Name)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", t.Name, err)
	}
	if ok {
		return false, nil
	}

	st, err := sqlgen.CreateTable(exec.Dialect(), t)
	if err != nil {
		return false, err
	}
	if _, err := exec.Exec(ctx, st.SQL); err != nil {
		if c, ok := exec.(ExistsClassifier); ok && c.IsTableExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("create table %s: %w", t.Name, err)
	}
	return true, nil
}
