package entity

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	sqliteddl "casmidb/internal/storage/sqlite/ddl"
	"casmidb/pkg/schema"
	"casmidb/pkg/sqlgen"
	"casmidb/pkg/storage"
)

type alcohol2 struct {
	Name   string
	ABV    int32
	Origin string
	Value  int32
}

func (a *alcohol2) Map(m *schema.Mapping) {
	m.Table("alcohol_table")
	m.Text("name", &a.Name).PrimaryKey()
	m.Int32("abv", &a.ABV).Field("alcohol_by_volume")
	m.Text("origin", &a.Origin)
	m.Int32("value", &a.Value).Ignore()
}

type alcohol struct {
	Name string
	ABV  int32
}

func (a *alcohol) Map(m *schema.Mapping) {
	m.Text("name", &a.Name)
	m.Int32("abv", &a.ABV)
}

type keyOnly struct{ ID int64 }

func (k *keyOnly) Map(m *schema.Mapping) { m.Int64("id", &k.ID).PrimaryKey() }

type execCall struct {
	sql  string
	args []any
}

// fakeExec records statements and serves canned rows. It embeds the
// interface so unused methods panic.
type fakeExec struct {
	storage.Executor

	exists    bool
	existsErr error
	execErr   error
	noRows    bool
	rows      []storage.Record

	execs   []execCall
	queries []execCall
}

func (f *fakeExec) Kind() string            { return "fake" }
func (f *fakeExec) Dialect() sqlgen.Dialect { return sqliteddl.Dialect{} }

func (f *fakeExec) TableExists(ctx context.Context, table string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeExec) Exec(ctx context.Context, q string, args ...any) (int64, error) {
	f.execs = append(f.execs, execCall{q, args})
	if f.execErr != nil {
		return 0, f.execErr
	}
	if f.noRows {
		return 0, nil
	}
	return 1, nil
}

func (f *fakeExec) Query(ctx context.Context, q string, args ...any) (storage.Cursor, error) {
	f.queries = append(f.queries, execCall{q, args})
	return &fakeCursor{rows: f.rows, i: -1}, nil
}

type fakeCursor struct {
	rows []storage.Record
	i    int
}

func (c *fakeCursor) Next() bool       { c.i++; return c.i < len(c.rows) }
func (c *fakeCursor) Row() storage.Row { return c.rows[c.i] }
func (c *fakeCursor) Err() error       { return nil }
func (c *fakeCursor) Close() error     { return nil }

func TestBindCreatesMissingTable(t *testing.T) {
	t.Parallel()

	fx := &fakeExec{}
	r, err := Bind(context.Background(), fx, &alcohol2{Name: "rum"})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if len(fx.execs) != 1 || !strings.HasPrefix(fx.execs[0].sql, `CREATE TABLE IF NOT EXISTS "alcohol_table"`) {
		t.Fatalf("execs = %+v, want one CREATE TABLE", fx.execs)
	}
	if !r.IsNew() || r.AutoPrimaryKey() || r.Table() != "alcohol_table" || r.PrimaryKey().Field != "name" {
		t.Fatalf("record = %s new=%v auto=%v", r, r.IsNew(), r.AutoPrimaryKey())
	}
}

func TestBindSkipsExistingTable(t *testing.T) {
	t.Parallel()

	fx := &fakeExec{exists: true}
	if _, err := Bind(context.Background(), fx, &alcohol{}); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if len(fx.execs) != 0 {
		t.Fatalf("execs = %+v, want none", fx.execs)
	}
}

func TestBindFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name     string
		fx       *fakeExec
		e        schema.Mapper
		wantBind bool
	}{
		{name: "catalog error", fx: &fakeExec{existsErr: boom}, e: &alcohol{}, wantBind: true},
		{name: "create error", fx: &fakeExec{execErr: boom}, e: &alcohol{}, wantBind: true},
		{name: "nothing to map", fx: &fakeExec{}, e: &keyOnly{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := Bind(context.Background(), tt.fx, tt.e)
			if err == nil || r != nil {
				t.Fatalf("Bind() = %v, %v; want nil, error", r, err)
			}
			var be *BindError
			if got := errors.As(err, &be); got != tt.wantBind {
				t.Fatalf("errors.As(BindError) = %v, want %v (err = %v)", got, tt.wantBind, err)
			}
			if tt.wantBind && !errors.Is(err, boom) {
				t.Fatalf("BindError does not wrap cause: %v", err)
			}
			if !tt.wantBind && !errors.Is(err, schema.ErrNoMappableFields) {
				t.Fatalf("err = %v, want ErrNoMappableFields", err)
			}
		})
	}
}

func TestSaveInsertsThenUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := &fakeExec{exists: true}
	a := &alcohol2{Name: "rum", ABV: 40, Origin: "Jamaica", Value: 7}
	r, err := Bind(ctx, fx, a)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if err := r.Save(ctx); err != nil {
		t.Fatalf("Save(insert) error = %v", err)
	}
	if r.IsNew() {
		t.Fatalf("IsNew() = true after insert")
	}

	a.ABV = 42
	if err := r.Save(ctx); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}

	want := []execCall{
		{
			sql:  `INSERT INTO "alcohol_table" ("name", "alcohol_by_volume", "origin") VALUES (?, ?, ?)`,
			args: []any{"rum", int32(40), "Jamaica"},
		},
		{
			sql:  `UPDATE "alcohol_table" SET "alcohol_by_volume" = ?, "origin" = ? WHERE "name" = ?`,
			args: []any{int32(42), "Jamaica", "rum"},
		},
	}
	if !reflect.DeepEqual(fx.execs, want) {
		t.Fatalf("execs = %+v\nwant %+v", fx.execs, want)
	}
}

func TestSaveAutoKeyOmitsID(t *testing.T) {
	t.Parallel()

	fx := &fakeExec{exists: true}
	r, err := Bind(context.Background(), fx, &alcohol{Name: "gin", ABV: 37})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := r.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := fx.execs[0]; got.sql != `INSERT INTO "alcohol" ("name", "abv") VALUES (?, ?)` || len(got.args) != 2 {
		t.Fatalf("insert = %+v", got)
	}
	if id, _ := r.PrimaryKey().Value().Int32(); id != schema.AutoKeyValue {
		t.Fatalf("id = %d, want %d (no read-back)", id, schema.AutoKeyValue)
	}
}

func TestFailedInsertStaysNew(t *testing.T) {
	t.Parallel()

	fx := &fakeExec{exists: true}
	r, err := Bind(context.Background(), fx, &alcohol{Name: "gin"})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	fx.execErr = &storage.BackendError{Kind: "fake", Op: "exec", Err: errors.New("disk full")}

	err = r.Save(context.Background())
	var be *storage.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("Save() error = %v, want BackendError", err)
	}
	if !r.IsNew() {
		t.Fatalf("IsNew() = false after failed insert")
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := &fakeExec{exists: true}
	r, err := Bind(ctx, fx, &alcohol2{Name: "rum", ABV: 40})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if err := r.Delete(ctx); !errors.Is(err, ErrNotPersisted) {
		t.Fatalf("Delete(new) error = %v, want ErrNotPersisted", err)
	}
	if len(fx.execs) != 0 {
		t.Fatalf("Delete(new) ran %+v", fx.execs)
	}

	if err := r.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := r.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got := fx.execs[len(fx.execs)-1]
	if got.sql != `DELETE FROM "alcohol_table" WHERE "name" = ?` || !reflect.DeepEqual(got.args, []any{"rum"}) {
		t.Fatalf("delete = %+v", got)
	}
	if !r.IsNew() {
		t.Fatalf("IsNew() = false after delete")
	}
}

func TestDeleteWithoutMatchingRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("key matches no row", func(t *testing.T) {
		t.Parallel()

		fx := &fakeExec{exists: true}
		r, err := Bind(ctx, fx, &alcohol2{Name: "rum"})
		if err != nil {
			t.Fatalf("Bind() error = %v", err)
		}
		if err := r.Save(ctx); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		fx.noRows = true
		if err := r.Delete(ctx); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Delete() error = %v, want ErrNotFound", err)
		}
		if r.IsNew() {
			t.Fatalf("IsNew() = true after delete of missing row")
		}
	})

	t.Run("auto key never loaded", func(t *testing.T) {
		t.Parallel()

		fx := &fakeExec{exists: true}
		r, err := Bind(ctx, fx, &alcohol{Name: "gin", ABV: 37})
		if err != nil {
			t.Fatalf("Bind() error = %v", err)
		}
		if err := r.Save(ctx); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := r.Delete(ctx); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Delete() error = %v, want ErrNotFound", err)
		}
		if len(fx.execs) != 1 {
			t.Fatalf("execs = %+v, want only the INSERT", fx.execs)
		}
		if r.IsNew() {
			t.Fatalf("IsNew() = true after refused delete")
		}
	})
}

// shelf drops origin from its mapping once retired is set.
type shelf struct {
	Name    string
	Origin  string
	ABV     int32
	retired bool
}

func (s *shelf) Map(m *schema.Mapping) {
	m.Text("name", &s.Name).PrimaryKey()
	m.Int32("abv", &s.ABV)
	o := m.Text("origin", &s.Origin)
	if s.retired {
		o.Ignore()
	}
}

func TestSaveReextractsMapping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := &fakeExec{exists: true}
	s := &shelf{Name: "rum", ABV: 40, Origin: "Cuba"}
	r, err := Bind(ctx, fx, s)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := r.Save(ctx); err != nil {
		t.Fatalf("Save(insert) error = %v", err)
	}

	s.retired = true
	s.ABV = 41
	if err := r.Save(ctx); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}

	got := fx.execs[len(fx.execs)-1]
	want := execCall{sql: `UPDATE "shelf" SET "abv" = ? WHERE "name" = ?`, args: []any{int32(41), "rum"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("update = %+v, want %+v", got, want)
	}
	if len(r.Columns()) != 1 {
		t.Fatalf("Columns() = %v, want only abv", r.Columns())
	}
}

func TestPopulate(t *testing.T) {
	t.Parallel()

	row := storage.Record{"name": "rum", "alcohol_by_volume": int64(45), "origin": "Cuba"}

	t.Run("all fields", func(t *testing.T) {
		t.Parallel()

		a := &alcohol2{Value: 3}
		r, err := newRecord(&fakeExec{}, a)
		if err != nil {
			t.Fatalf("newRecord() error = %v", err)
		}
		if err := r.Populate(row); err != nil {
			t.Fatalf("Populate() error = %v", err)
		}
		if r.IsNew() {
			t.Fatalf("IsNew() = true after full populate")
		}
		if *a != (alcohol2{Name: "rum", ABV: 45, Origin: "Cuba", Value: 3}) {
			t.Fatalf("entity = %+v", *a)
		}
	})

	t.Run("subset without key", func(t *testing.T) {
		t.Parallel()

		a := &alcohol2{Name: "gin", ABV: 37, Origin: "London"}
		r, err := newRecord(&fakeExec{}, a)
		if err != nil {
			t.Fatalf("newRecord() error = %v", err)
		}
		if err := r.Populate(row, "origin"); err != nil {
			t.Fatalf("Populate(origin) error = %v", err)
		}
		if !r.IsNew() {
			t.Fatalf("IsNew() = false without key field")
		}
		if *a != (alcohol2{Name: "gin", ABV: 37, Origin: "Cuba"}) {
			t.Fatalf("entity = %+v", *a)
		}
	})

	t.Run("subset with key", func(t *testing.T) {
		t.Parallel()

		a := &alcohol2{}
		r, err := newRecord(&fakeExec{}, a)
		if err != nil {
			t.Fatalf("newRecord() error = %v", err)
		}
		if err := r.Populate(row, "name"); err != nil {
			t.Fatalf("Populate(name) error = %v", err)
		}
		if r.IsNew() || a.Name != "rum" || a.Origin != "" {
			t.Fatalf("new=%v entity=%+v", r.IsNew(), *a)
		}
	})

	t.Run("auto key kept in record", func(t *testing.T) {
		t.Parallel()

		a := &alcohol{}
		r, err := newRecord(&fakeExec{}, a)
		if err != nil {
			t.Fatalf("newRecord() error = %v", err)
		}
		if err := r.Populate(storage.Record{"id": int64(9), "name": "gin", "abv": int64(37)}); err != nil {
			t.Fatalf("Populate() error = %v", err)
		}
		if id, _ := r.PrimaryKey().Value().Int32(); id != 9 {
			t.Fatalf("id = %d, want 9", id)
		}
		if *a != (alcohol{Name: "gin", ABV: 37}) {
			t.Fatalf("entity = %+v", *a)
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		r, err := newRecord(&fakeExec{}, &alcohol2{})
		if err != nil {
			t.Fatalf("newRecord() error = %v", err)
		}
		if err := r.Populate(row, "abv"); !errors.Is(err, ErrUnknownField) {
			t.Fatalf("Populate(logical name) error = %v, want ErrUnknownField", err)
		}
		if err := r.Populate(storage.Record{"name": "x"}); !errors.Is(err, storage.ErrNoField) {
			t.Fatalf("Populate(short row) error = %v, want ErrNoField", err)
		}
	})
}

func TestReloadAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := &fakeExec{exists: true, rows: []storage.Record{{"name": "rum", "alcohol_by_volume": int64(45), "origin": "Cuba"}}}

	r, err := Bind(ctx, fx, &alcohol2{Name: "rum"})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := r.Reload(ctx); !errors.Is(err, ErrNotPersisted) {
		t.Fatalf("Reload(new) error = %v, want ErrNotPersisted", err)
	}

	a := &alcohol2{}
	found, err := Find(ctx, fx, a, "rum")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found.IsNew() || a.ABV != 45 || a.Origin != "Cuba" {
		t.Fatalf("found = %s entity=%+v", found, *a)
	}
	q := fx.queries[len(fx.queries)-1]
	if q.sql != `SELECT "name", "alcohol_by_volume", "origin" FROM "alcohol_table" WHERE "name" = ?` || !reflect.DeepEqual(q.args, []any{"rum"}) {
		t.Fatalf("query = %+v", q)
	}

	fx.rows = nil
	if _, err := Find(ctx, fx, &alcohol2{}, "vodka"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFindAll(t *testing.T) {
	t.Parallel()

	fx := &fakeExec{exists: true, rows: []storage.Record{
		{"id": int64(1), "name": "gin", "abv": int64(37)},
		{"id": int64(2), "name": "rum", "abv": int64(40)},
	}}
	recs, err := FindAll(context.Background(), fx, func() *alcohol { return &alcohol{} })
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if got := recs[1].Entity().(*alcohol); *got != (alcohol{Name: "rum", ABV: 40}) {
		t.Fatalf("recs[1] = %+v", *got)
	}
	if got := recs[0].String(); got != "alcohol {id(key): 1, name: gin, abv: 37}" {
		t.Fatalf("String() = %q", got)
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	r, err := newRecord(&fakeExec{}, &alcohol2{Name: "rum", ABV: 40, Origin: "Jamaica", Value: 1})
	if err != nil {
		t.Fatalf("newRecord() error = %v", err)
	}
	want := "alcohol_table {name(key): rum, alcohol_by_volume: 40, origin: Jamaica}"
	if got := r.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
