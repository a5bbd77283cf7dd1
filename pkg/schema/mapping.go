// Package schema is the declaration surface entity types use to describe
// how they map onto a table, and the extractor that turns such a
// declaration into Columns.
//
// An entity type implements Mapper. Map is called on the concrete instance
// every time metadata is needed, so the closures it registers always read
// and write that instance's fields:
//
//	type Alcohol struct {
//	    Name   string
//	    ABV    int32
//	    Origin string
//	    Value  int32
//	}
//
//	func (a *Alcohol) Map(m *schema.Mapping) {
//	    m.Table("alcohol_table")
//	    m.Text("name", &a.Name).PrimaryKey()
//	    m.Int32("abv", &a.ABV).Field("alcohol_by_volume")
//	    m.Text("origin", &a.Origin)
//	    m.Int32("value", &a.Value).Ignore()
//	}
//
// Attributes bound by pointer are read and written directly; attributes
// declared with Property go through getter/setter functions. Both produce
// identical Columns.
package schema

import (
	"fmt"
	"strings"
	"time"

	"casmidb/pkg/column"
)

// Mapper is implemented by every persistable entity type.
type Mapper interface {
	Map(m *Mapping)
}

// Role says how the extractor treats an attribute.
type Role int

const (
	RoleColumn Role = iota
	RolePrimaryKey
	RoleIgnored
	// RoleBackRef marks a link to an owning object. It is never mapped.
	RoleBackRef
)

// Accessor reads and writes one attribute of an entity instance.
type Accessor interface {
	Get() (column.Value, error)
	Set(v column.Value) error
}

// Attribute is one declared attribute. Modifiers return the receiver so
// declarations chain.
type Attribute struct {
	name  string
	field string
	kind  column.Kind
	role  Role
	acc   Accessor
}

// Field overrides the database field name (default: the attribute name).
func (a *Attribute) Field(name string) *Attribute {
	a.field = name
	return a
}

// PrimaryKey marks the attribute as the entity's primary key. An ignored
// attribute stays ignored.
func (a *Attribute) PrimaryKey() *Attribute {
	if a.role == RoleColumn {
		a.role = RolePrimaryKey
	}
	return a
}

// Ignore excludes the attribute from mapping entirely.
func (a *Attribute) Ignore() *Attribute {
	if a.role != RoleBackRef {
		a.role = RoleIgnored
	}
	return a
}

func (a *Attribute) Name() string      { return a.name }
func (a *Attribute) Kind() column.Kind { return a.kind }
func (a *Attribute) Role() Role        { return a.role }

// FieldName returns the effective database field name.
func (a *Attribute) FieldName() string {
	if a.field != "" {
		return a.field
	}
	return a.name
}

// Mapping collects the declarations made by a Mapper.
type Mapping struct {
	table string
	attrs []*Attribute
}

// Describe runs e.Map on a fresh Mapping.
func Describe(e Mapper) *Mapping {
	m := &Mapping{}
	e.Map(m)
	return m
}

// Table overrides the table name (default: the type's simple name).
func (m *Mapping) Table(name string) { m.table = name }

// Attributes returns the declared attributes in declaration order.
func (m *Mapping) Attributes() []*Attribute { return m.attrs }

func (m *Mapping) add(name string, kind column.Kind, acc Accessor) *Attribute {
	a := &Attribute{name: name, kind: kind, acc: acc}
	m.attrs = append(m.attrs, a)
	return a
}

func (m *Mapping) Int16(name string, p *int16) *Attribute     { return bindPtr(m, name, p) }
func (m *Mapping) Int32(name string, p *int32) *Attribute     { return bindPtr(m, name, p) }
func (m *Mapping) Int64(name string, p *int64) *Attribute     { return bindPtr(m, name, p) }
func (m *Mapping) Int(name string, p *int) *Attribute         { return bindPtr(m, name, p) }
func (m *Mapping) Text(name string, p *string) *Attribute     { return bindPtr(m, name, p) }
func (m *Mapping) Float32(name string, p *float32) *Attribute { return bindPtr(m, name, p) }
func (m *Mapping) Float64(name string, p *float64) *Attribute { return bindPtr(m, name, p) }
func (m *Mapping) Time(name string, p *time.Time) *Attribute  { return bindPtr(m, name, p) }
func (m *Mapping) Bytes(name string, p *[]byte) *Attribute    { return bindPtr(m, name, p) }

// BackRef declares a link to an owning object so it is never mistaken for
// a column.
func (m *Mapping) BackRef(name string) *Attribute {
	a := m.add(name, column.Invalid, nil)
	a.role = RoleBackRef
	return a
}

// Bind binds an attribute by pointer, inferring its kind from the pointer
// type. Pointers to types outside the supported set produce an attribute
// the extractor skips.
func (m *Mapping) Bind(name string, ptr any) *Attribute {
	switch p := ptr.(type) {
	case *int16:
		return m.Int16(name, p)
	case *int32:
		return m.Int32(name, p)
	case *int64:
		return m.Int64(name, p)
	case *int:
		return m.Int(name, p)
	case *string:
		return m.Text(name, p)
	case *float32:
		return m.Float32(name, p)
	case *float64:
		return m.Float64(name, p)
	case *time.Time:
		return m.Time(name, p)
	case *[]byte:
		return m.Bytes(name, p)
	default:
		return m.add(name, column.Invalid, nil)
	}
}

// Scalar lists the Go types an attribute may have.
type Scalar interface {
	int | int16 | int32 | int64 | string | float32 | float64 | time.Time | []byte
}

// Property declares an attribute accessed through a getter and a setter
// instead of a field pointer.
func Property[T Scalar](m *Mapping, name string, get func() T, set func(T)) *Attribute {
	var zero T
	kind := KindOf(zero)
	return m.add(name, kind, accessor[T]{kind: kind, get: get, set: set})
}

func bindPtr[T Scalar](m *Mapping, name string, p *T) *Attribute {
	return Property(m, name, func() T { return *p }, func(v T) { *p = v })
}

// KindOf returns the column kind used for a Go value's type, or
// column.Invalid for unsupported types.
func KindOf(v any) column.Kind {
	switch v.(type) {
	case int16:
		return column.Int16
	case int32:
		return column.Int32
	case int, int64:
		return column.Int64
	case string:
		return column.String
	case float32:
		return column.Float32
	case float64:
		return column.Float64
	case time.Time:
		return column.Timestamp
	case []byte:
		return column.Blob
	default:
		return column.Invalid
	}
}

type accessor[T Scalar] struct {
	kind column.Kind
	get  func() T
	set  func(T)
}

func (a accessor[T]) Get() (column.Value, error) {
	return column.Convert(a.kind, any(a.get()))
}

// Set stores v, converting it to the attribute's kind first. Null stores
// the zero value of T.
func (a accessor[T]) Set(v column.Value) error {
	cv, err := column.Convert(a.kind, v)
	if err != nil {
		return err
	}
	x, err := fromValue[T](cv)
	if err != nil {
		return err
	}
	a.set(x)
	return nil
}

func fromValue[T Scalar](v column.Value) (T, error) {
	var zero T
	if v.IsNull() {
		return zero, nil
	}
	if _, ok := any(zero).(int); ok {
		n, _ := v.Int64()
		return any(int(n)).(T), nil
	}
	if b, ok := v.Blob(); ok {
		// The Value keeps its own bytes; the attribute gets a copy.
		return any(append([]byte(nil), b...)).(T), nil
	}
	x, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("schema: cannot assign %s value to %T", v.Kind(), zero)
	}
	return x, nil
}

// TableName returns the table an entity maps to: the declared override or
// the simple name of its Go type.
func TableName(e Mapper) string {
	if t := Describe(e).table; t != "" {
		return t
	}
	return typeName(e)
}

func typeName(e any) string {
	n := fmt.Sprintf("%T", e)
	if i := strings.IndexByte(n, '['); i >= 0 {
		n = n[:i]
	}
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		n = n[i+1:]
	}
	return strings.TrimLeft(n, "*")
}
