// Package sqlgen renders the parameterized statements an entity needs
// (CREATE TABLE, INSERT, UPDATE, DELETE and key lookups) for a given SQL
// dialect.
//
// Every function here is pure: the same dialect and Table always produce the
// same SQL text and argument list. Statement shape is uniform across
// dialects; identifier quoting, placeholder rendering, column types and the
// CREATE TABLE form come from the Dialect.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"casmidb/pkg/column"
	"casmidb/pkg/schema"
)

// Dialect captures everything that differs between SQL backends.
type Dialect interface {
	// Kind is the registry name, e.g. "sqlite" or "postgres".
	Kind() string
	// QuoteIdent quotes a column or (possibly dotted) table name.
	QuoteIdent(id string) string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// CreateTable renders an idempotent CREATE TABLE for t.
	CreateTable(t Table) (string, error)
}

// ErrNoColumns is returned for a Table without regular columns.
var ErrNoColumns = errors.New("sqlgen: table has no columns")

// Table is the statement generator's view of an entity.
type Table struct {
	Name           string
	PrimaryKey     column.Column
	Columns        []column.Column
	AutoPrimaryKey bool
}

// FromMetadata converts extractor output into a Table.
func FromMetadata(md schema.Metadata) Table {
	return Table{
		Name:           md.Table,
		PrimaryKey:     md.PrimaryKey,
		Columns:        md.Columns,
		AutoPrimaryKey: md.AutoPrimaryKey,
	}
}

// Statement is SQL text plus the arguments to bind, in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

func check(t Table) error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("sqlgen: table name must not be empty")
	}
	if t.PrimaryKey.Field == "" {
		return fmt.Errorf("sqlgen: table %s has no primary key field", t.Name)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: %s", ErrNoColumns, t.Name)
	}
	return nil
}

// CreateTable delegates to the dialect after validating t.
func CreateTable(d Dialect, t Table) (Statement, error) {
	if err := check(t); err != nil {
		return Statement{}, err
	}
	s, err := d.CreateTable(t)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: s}, nil
}

// Insert renders an INSERT. The primary key is listed first, and only when
// it is not auto-generated; the backend assigns auto keys and the value is
// not read back.
func Insert(d Dialect, t Table) (Statement, error) {
	if err := check(t); err != nil {
		return Statement{}, err
	}

	cols := t.Columns
	if !t.AutoPrimaryKey {
		cols = append([]column.Column{t.PrimaryKey}, t.Columns...)
	}

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = d.QuoteIdent(c.Field)
		marks[i] = d.Placeholder(i + 1)
		args[i] = c.Arg()
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(t.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
	return Statement{SQL: sql, Args: args}, nil
}

// Update renders an UPDATE of every regular column, keyed by the primary
// key, which is bound last.
func Update(d Dialect, t Table) (Statement, error) {
	if err := check(t); err != nil {
		return Statement{}, err
	}

	sets := make([]string, len(t.Columns))
	args := make([]any, 0, len(t.Columns)+1)
	for i, c := range t.Columns {
		sets[i] = d.QuoteIdent(c.Field) + " = " + d.Placeholder(i+1)
		args = append(args, c.Arg())
	}
	args = append(args, t.PrimaryKey.Arg())

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		d.QuoteIdent(t.Name), strings.Join(sets, ", "),
		d.QuoteIdent(t.PrimaryKey.Field), d.Placeholder(len(t.Columns)+1))
	return Statement{SQL: sql, Args: args}, nil
}

// Delete renders a DELETE by primary key.
func Delete(d Dialect, t Table) (Statement, error) {
	if err := check(t); err != nil {
		return Statement{}, err
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		d.QuoteIdent(t.Name), d.QuoteIdent(t.PrimaryKey.Field), d.Placeholder(1))
	return Statement{SQL: sql, Args: []any{t.PrimaryKey.Arg()}}, nil
}

// SelectByKey renders a lookup of one row by primary key. The key column is
// selected first, followed by the regular columns.
func SelectByKey(d Dialect, t Table) (Statement, error) {
	st, err := SelectAll(d, t)
	if err != nil {
		return Statement{}, err
	}
	st.SQL += fmt.Sprintf(" WHERE %s = %s", d.QuoteIdent(t.PrimaryKey.Field), d.Placeholder(1))
	st.Args = []any{t.PrimaryKey.Arg()}
	return st, nil
}

// SelectAll renders a scan of every row.
func SelectAll(d Dialect, t Table) (Statement, error) {
	if err := check(t); err != nil {
		return Statement{}, err
	}
	names := make([]string, 0, len(t.Columns)+1)
	names = append(names, d.QuoteIdent(t.PrimaryKey.Field))
	for _, c := range t.Columns {
		names = append(names, d.QuoteIdent(c.Field))
	}
	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), d.QuoteIdent(t.Name))
	return Statement{SQL: sql}, nil
}
