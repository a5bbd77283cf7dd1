package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPersisted is returned by Delete and Reload on a Record that has
	// never been inserted or loaded.
	ErrNotPersisted = errors.New("entity: record has not been persisted")

	// ErrNotFound is returned by Find, Reload and Delete when no row has the
	// key.
	ErrNotFound = errors.New("entity: no row with that primary key")

	// ErrUnknownField is returned by Populate for a field name that is
	// neither the primary key nor a mapped column.
	ErrUnknownField = errors.New("entity: unknown field")
)

// BindError reports that the table backing an entity could not be checked
// or created.
type BindError struct {
	Table string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("entity: bind %s: %v", e.Table, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }
