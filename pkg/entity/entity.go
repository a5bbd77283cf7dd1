// Package entity persists values whose types implement schema.Mapper.
//
// Bind extracts an entity's metadata, makes sure its table exists and
// returns a Record that tracks whether the row is new or persisted:
//
//	rec, err := entity.Bind(ctx, exec, &Alcohol{Name: "rum", ABV: 40})
//	if err != nil { ... }
//	if err := rec.Save(ctx); err != nil { ... } // INSERT
//	a.ABV = 42
//	if err := rec.Save(ctx); err != nil { ... } // UPDATE
//
// A Record is not safe for concurrent use. Distinct Records may be saved
// concurrently when the Executor allows it.
package entity

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"casmidb/internal/metrics"
	"casmidb/pkg/column"
	"casmidb/pkg/schema"
	"casmidb/pkg/sqlgen"
	"casmidb/pkg/storage"
)

// Record binds one entity instance to an Executor.
type Record struct {
	exec  storage.Executor
	e     schema.Mapper
	table string
	pk    column.Column
	cols  []column.Column
	auto  bool
	isNew bool
}

// Bind extracts e's metadata and creates its table when the backend does
// not have it yet. Extraction failures are returned as *schema.ExtractError,
// catalog and DDL failures as *BindError.
func Bind(ctx context.Context, exec storage.Executor, e schema.Mapper) (r *Record, err error) {
	start := time.Now()
	table := schema.TableName(e)
	defer func() {
		metrics.RecordStep(table, "bind", err, time.Since(start))
		if err != nil {
			log.Printf("entity: bind failed table=%s kind=%s err=%v", table, exec.Kind(), err)
		}
	}()

	r, err = newRecord(exec, e)
	if err != nil {
		return nil, err
	}

	created, err := storage.EnsureTable(ctx, exec, r.sqlTable())
	if err != nil {
		return nil, &BindError{Table: r.table, Err: err}
	}
	if created {
		log.Printf("entity: created table=%s kind=%s", r.table, exec.Kind())
	}
	return r, nil
}

// newRecord extracts metadata without touching the backend.
func newRecord(exec storage.Executor, e schema.Mapper) (*Record, error) {
	md, err := schema.Extract(e)
	if err != nil {
		return nil, err
	}
	return &Record{
		exec:  exec,
		e:     e,
		table: md.Table,
		pk:    md.PrimaryKey,
		cols:  md.Columns,
		auto:  md.AutoPrimaryKey,
		isNew: true,
	}, nil
}

// Entity returns the bound instance.
func (r *Record) Entity() schema.Mapper { return r.e }

func (r *Record) Table() string             { return r.table }
func (r *Record) PrimaryKey() column.Column { return r.pk }
func (r *Record) AutoPrimaryKey() bool      { return r.auto }
func (r *Record) IsNew() bool               { return r.isNew }

// Columns returns a copy of the regular columns as of the last extraction.
func (r *Record) Columns() []column.Column {
	out := make([]column.Column, len(r.cols))
	copy(out, r.cols)
	return out
}

func (r *Record) sqlTable() sqlgen.Table {
	return sqlgen.Table{Name: r.table, PrimaryKey: r.pk, Columns: r.cols, AutoPrimaryKey: r.auto}
}

// refresh re-extracts metadata from the entity's current attribute values.
// A synthesized key is not an attribute, so its value is carried over.
func (r *Record) refresh() error {
	md, err := schema.Extract(r.e)
	if err != nil {
		return err
	}
	if !(md.AutoPrimaryKey && r.auto) {
		r.pk = md.PrimaryKey
	}
	r.table = md.Table
	r.cols = md.Columns
	r.auto = md.AutoPrimaryKey
	return nil
}

// Save inserts a new Record or updates a persisted one. Metadata is
// re-extracted first, so attribute changes since Bind are written. An
// auto-generated key is not read back after INSERT.
func (r *Record) Save(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStep(r.table, "save", err, time.Since(start))
		if err != nil {
			log.Printf("entity: save failed table=%s err=%v", r.table, err)
		}
	}()

	if err := r.refresh(); err != nil {
		return err
	}

	if r.isNew {
		st, err := sqlgen.Insert(r.exec.Dialect(), r.sqlTable())
		if err != nil {
			return err
		}
		n, err := r.exec.Exec(ctx, st.SQL, st.Args...)
		if err != nil {
			return fmt.Errorf("entity: insert %s: %w", r.table, err)
		}
		r.isNew = false
		metrics.RecordRows(r.table, "inserted", n)
		return nil
	}

	st, err := sqlgen.Update(r.exec.Dialect(), r.sqlTable())
	if err != nil {
		return err
	}
	n, err := r.exec.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return fmt.Errorf("entity: update %s: %w", r.table, err)
	}
	metrics.RecordRows(r.table, "updated", n)
	return nil
}

// Delete removes the row by primary key. The Record becomes new again, so a
// later Save inserts it. An auto-generated key that was never loaded, or a
// key matching no row, yields ErrNotFound and leaves the Record persisted.
func (r *Record) Delete(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStep(r.table, "delete", err, time.Since(start))
		if err != nil {
			log.Printf("entity: delete failed table=%s err=%v", r.table, err)
		}
	}()

	if r.isNew {
		return ErrNotPersisted
	}
	if err := r.refresh(); err != nil {
		return err
	}
	if r.auto {
		if id, _ := r.pk.Value().Int32(); id == schema.AutoKeyValue {
			return fmt.Errorf("%w: %s %s not loaded since insert", ErrNotFound, r.table, r.pk.Field)
		}
	}

	st, err := sqlgen.Delete(r.exec.Dialect(), r.sqlTable())
	if err != nil {
		return err
	}
	n, err := r.exec.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return fmt.Errorf("entity: delete %s: %w", r.table, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s=%s", ErrNotFound, r.table, r.pk.Field, r.pk.Value())
	}
	r.isNew = true
	metrics.RecordRows(r.table, "deleted", n)
	return nil
}

// Populate copies values from row into the Record and then onto the
// entity's attributes.
//
// With no fields, the primary key and every column are copied and the
// Record becomes persisted. With fields, only the named columns are copied;
// the key, and the transition to persisted, only when the key field is
// named. Field names are database field names.
func (r *Record) Populate(row storage.Row, fields ...string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStep(r.table, "populate", err, time.Since(start))
		if err != nil {
			log.Printf("entity: populate failed table=%s err=%v", r.table, err)
		}
	}()

	if err := r.refresh(); err != nil {
		return err
	}

	want := func(string) bool { return true }
	if len(fields) > 0 {
		set := make(map[string]bool, len(fields))
		for _, f := range fields {
			if !r.hasField(f) {
				return fmt.Errorf("%w: %s.%s", ErrUnknownField, r.table, f)
			}
			set[f] = true
		}
		want = func(f string) bool { return set[f] }
	}

	pk := r.pk
	keyLoaded := false
	if want(pk.Field) {
		if err := load(row, &pk); err != nil {
			return err
		}
		keyLoaded = true
	}
	cols := r.Columns()
	for i := range cols {
		if !want(cols[i].Field) {
			continue
		}
		if err := load(row, &cols[i]); err != nil {
			return err
		}
	}

	r.pk, r.cols = pk, cols
	if keyLoaded {
		r.isNew = false
	}

	push := cols
	if !r.auto {
		push = append([]column.Column{pk}, cols...)
	}
	if err := schema.Apply(r.e, push...); err != nil {
		return fmt.Errorf("entity: populate %s: %w", r.table, err)
	}
	return nil
}

func load(row storage.Row, c *column.Column) error {
	v, err := row.Get(c.Kind, c.Field)
	if err != nil {
		return err
	}
	return c.Set(v)
}

func (r *Record) hasField(f string) bool {
	if r.pk.Field == f {
		return true
	}
	for _, c := range r.cols {
		if c.Field == f {
			return true
		}
	}
	return false
}

// Reload re-reads the persisted row by primary key and populates every
// field from it.
func (r *Record) Reload(ctx context.Context) error {
	if r.isNew {
		return ErrNotPersisted
	}
	if err := r.refresh(); err != nil {
		return err
	}
	return r.fetch(ctx)
}

func (r *Record) fetch(ctx context.Context) error {
	st, err := sqlgen.SelectByKey(r.exec.Dialect(), r.sqlTable())
	if err != nil {
		return err
	}
	cur, err := r.exec.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return fmt.Errorf("entity: select %s: %w", r.table, err)
	}
	defer cur.Close()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return fmt.Errorf("entity: select %s: %w", r.table, err)
		}
		return fmt.Errorf("%w: %s %s=%s", ErrNotFound, r.table, r.pk.Field, r.pk.Value())
	}
	if err := r.Populate(cur.Row()); err != nil {
		return err
	}
	metrics.RecordRows(r.table, "loaded", 1)
	return nil
}

// String renders "table {key(key): v, field: v, ...}".
func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.table)
	sb.WriteString(" {")
	sb.WriteString(r.pk.Field)
	sb.WriteString("(key): ")
	sb.WriteString(r.pk.Value().String())
	for _, c := range r.cols {
		sb.WriteString(", ")
		sb.WriteString(c.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
