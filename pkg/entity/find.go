package entity

import (
	"context"
	"fmt"

	"casmidb/internal/metrics"
	"casmidb/pkg/column"
	"casmidb/pkg/schema"
	"casmidb/pkg/sqlgen"
	"casmidb/pkg/storage"
)

// Find binds e, sets its primary key to key and loads the matching row into
// it. key is converted to the key's declared kind.
func Find(ctx context.Context, exec storage.Executor, e schema.Mapper, key any) (*Record, error) {
	r, err := Bind(ctx, exec, e)
	if err != nil {
		return nil, err
	}
	v, err := column.Convert(r.pk.Kind, key)
	if err != nil {
		return nil, fmt.Errorf("entity: find %s: key: %w", r.table, err)
	}
	if err := r.pk.Set(v); err != nil {
		return nil, err
	}
	// Push an explicit key onto the entity so re-extraction keeps it.
	if !r.auto {
		if err := schema.Apply(r.e, r.pk); err != nil {
			return nil, fmt.Errorf("entity: find %s: %w", r.table, err)
		}
	}
	if err := r.fetch(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// FindAll loads every row of E's table. newFn returns a fresh instance per
// row; the first call is also used to bind the table.
func FindAll[E schema.Mapper](ctx context.Context, exec storage.Executor, newFn func() E) ([]*Record, error) {
	tmpl, err := Bind(ctx, exec, newFn())
	if err != nil {
		return nil, err
	}

	st, err := sqlgen.SelectAll(exec.Dialect(), tmpl.sqlTable())
	if err != nil {
		return nil, err
	}
	cur, err := exec.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("entity: select %s: %w", tmpl.table, err)
	}
	defer cur.Close()

	var out []*Record
	for cur.Next() {
		r, err := newRecord(exec, newFn())
		if err != nil {
			return nil, err
		}
		if err := r.Populate(cur.Row()); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("entity: select %s: %w", tmpl.table, err)
	}
	metrics.RecordRows(tmpl.table, "loaded", int64(len(out)))
	return out, nil
}
