package schema

import (
	"errors"
	"fmt"

	"casmidb/pkg/column"
)

var (
	// ErrNoMappableFields means no regular column survived extraction, so
	// the entity cannot be persisted.
	ErrNoMappableFields = errors.New("no mappable fields")

	// ErrDuplicateField means two mapped attributes resolve to the same
	// database field name.
	ErrDuplicateField = errors.New("duplicate field name")
)

// ExtractError reports an extraction failure for one entity type.
type ExtractError struct {
	Entity string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("schema: extract %s: %v", e.Entity, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Synthesized primary key used when no attribute is marked as one.
const (
	AutoKeyName  = "id"
	AutoKeyValue = int32(-1)
)

// Metadata is the result of extracting an entity instance.
type Metadata struct {
	Table      string
	PrimaryKey column.Column
	// Columns excludes the primary key, ignored attributes, back-references
	// and attributes of unsupported types. Order follows declaration order.
	Columns []column.Column
	// AutoPrimaryKey is set when the key was synthesized; the backend is
	// expected to assign it.
	AutoPrimaryKey bool
}

// Extract reads e's declaration and current attribute values.
//
// If several attributes are marked primary key, the first one declared is
// used and the rest are left out of the column set.
func Extract(e Mapper) (Metadata, error) {
	m := Describe(e)
	md := Metadata{Table: m.table}
	if md.Table == "" {
		md.Table = typeName(e)
	}

	fail := func(err error) (Metadata, error) {
		return Metadata{}, &ExtractError{Entity: md.Table, Err: err}
	}

	seen := make(map[string]string, len(m.attrs))
	keyFound := false

	for _, a := range m.attrs {
		if !mappable(a) {
			continue
		}
		if a.role == RolePrimaryKey && keyFound {
			continue
		}

		v, err := a.acc.Get()
		if err != nil {
			return fail(fmt.Errorf("attribute %s: %w", a.name, err))
		}
		c, err := column.New(a.name, a.FieldName(), a.kind, v)
		if err != nil {
			return fail(fmt.Errorf("attribute %s: %w", a.name, err))
		}
		if prev, dup := seen[c.Field]; dup {
			return fail(fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateField, c.Field, prev, a.name))
		}
		seen[c.Field] = a.name

		if a.role == RolePrimaryKey {
			md.PrimaryKey = c
			keyFound = true
			continue
		}
		md.Columns = append(md.Columns, c)
	}

	if !keyFound {
		if prev, dup := seen[AutoKeyName]; dup {
			return fail(fmt.Errorf("%w: %q used by %s and the synthesized key", ErrDuplicateField, AutoKeyName, prev))
		}
		md.PrimaryKey = autoKey()
		md.AutoPrimaryKey = true
	}

	if len(md.Columns) == 0 {
		return fail(ErrNoMappableFields)
	}
	return md, nil
}

func autoKey() column.Column {
	c, _ := column.New(AutoKeyName, AutoKeyName, column.Int32, column.Int32Value(AutoKeyValue))
	return c
}

func mappable(a *Attribute) bool {
	switch a.role {
	case RoleIgnored, RoleBackRef:
		return false
	}
	return a.kind.Valid() && a.acc != nil
}

// IsAutoPrimaryKey reports whether e declares no usable primary key.
func IsAutoPrimaryKey(e Mapper) bool {
	for _, a := range Describe(e).attrs {
		if a.role == RolePrimaryKey && mappable(a) {
			return false
		}
	}
	return true
}

// PrimaryKeyField returns the database field name of e's primary key,
// "id" when it is synthesized.
func PrimaryKeyField(e Mapper) string {
	for _, a := range Describe(e).attrs {
		if a.role == RolePrimaryKey && mappable(a) {
			return a.FieldName()
		}
	}
	return AutoKeyName
}

// Apply writes column values back onto e's attributes, matching on the
// logical attribute name. Columns without a matching attribute (such as
// the synthesized key) are skipped.
func Apply(e Mapper, cols ...column.Column) error {
	m := Describe(e)
	byName := make(map[string]*Attribute, len(m.attrs))
	for _, a := range m.attrs {
		if mappable(a) {
			byName[a.name] = a
		}
	}
	for _, c := range cols {
		a, ok := byName[c.Name]
		if !ok {
			continue
		}
		if err := a.acc.Set(c.Value()); err != nil {
			return fmt.Errorf("schema: set %s: %w", c.Name, err)
		}
	}
	return nil
}
