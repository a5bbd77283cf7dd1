package column

import (
	"errors"
	"fmt"
)

// ErrKindMismatch is returned when a Value of one kind is stored into a
// Column declared with another.
var ErrKindMismatch = errors.New("column: value kind does not match declared kind")

// Column is the mapped representation of one attribute.
//
//   - Name: logical attribute name as declared by the entity.
//   - Field: database field name (Name unless overridden).
//   - Kind: declared kind; fixes which Value variant may be stored.
type Column struct {
	Name  string
	Field string
	Kind  Kind
	value Value
}

// New builds a Column. An empty field defaults to name. v must be null or
// of the declared kind.
func New(name, field string, kind Kind, v Value) (Column, error) {
	if field == "" {
		field = name
	}
	c := Column{Name: name, Field: field, Kind: kind}
	if err := c.Set(v); err != nil {
		return Column{}, err
	}
	return c, nil
}

// Value returns the current value.
func (c Column) Value() Value { return c.value }

// Set replaces the value. Null is always accepted.
func (c *Column) Set(v Value) error {
	if !v.IsNull() && v.Kind() != c.Kind {
		return fmt.Errorf("%w: field %s is %s, got %s", ErrKindMismatch, c.Field, c.Kind, v.Kind())
	}
	c.value = v
	return nil
}

// SetRaw converts raw to the declared kind and stores it.
func (c *Column) SetRaw(raw any) error {
	v, err := Convert(c.Kind, raw)
	if err != nil {
		return fmt.Errorf("field %s: %w", c.Field, err)
	}
	c.value = v
	return nil
}

// Arg returns the value as a driver argument (nil for null).
func (c Column) Arg() any { return c.value.Interface() }

func (c Column) String() string {
	return c.Field + ": " + c.value.String()
}
