// Package column holds the mapped representation of a single entity
// attribute: its logical name, database field name, declared kind and
// current value.
//
// Value is a small tagged union over the semantic types the mapper
// understands. Convert is the single conversion routine used on both the
// read path (driver value -> Value) and the write path (Value -> entity
// attribute), so every backend and every attribute binding agree on what a
// given kind may hold.
package column

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the declared semantic type of a column.
type Kind int

const (
	// Invalid marks an attribute whose Go type is not mappable. The
	// extractor skips such attributes silently.
	Invalid Kind = iota
	Int16
	Int32
	Int64
	String
	Float32
	Float64
	Timestamp
	Blob
)

var kindNames = [...]string{
	Invalid:   "invalid",
	Int16:     "int16",
	Int32:     "int32",
	Int64:     "int64",
	String:    "string",
	Float32:   "float32",
	Float64:   "float64",
	Timestamp: "timestamp",
	Blob:      "blob",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the supported semantic kinds.
func (k Kind) Valid() bool { return k > Invalid && k <= Blob }

// Value is an immutable tagged union holding null or exactly one of the
// supported kinds. The zero Value is null.
type Value struct {
	kind Kind
	v    any
}

// Null returns the null Value.
func Null() Value { return Value{} }

func Int16Value(v int16) Value         { return Value{kind: Int16, v: v} }
func Int32Value(v int32) Value         { return Value{kind: Int32, v: v} }
func Int64Value(v int64) Value         { return Value{kind: Int64, v: v} }
func StringValue(v string) Value       { return Value{kind: String, v: v} }
func Float32Value(v float32) Value     { return Value{kind: Float32, v: v} }
func Float64Value(v float64) Value     { return Value{kind: Float64, v: v} }
func TimestampValue(v time.Time) Value { return Value{kind: Timestamp, v: v} }

// BlobValue copies b so later mutation by the caller does not leak into the
// Value. A nil slice yields null.
func BlobValue(b []byte) Value {
	if b == nil {
		return Null()
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: Blob, v: cp}
}

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool { return v.kind == Invalid }

// Kind returns the variant held by v; Invalid for null.
func (v Value) Kind() Kind { return v.kind }

// Interface returns the Go value held by v (nil for null). The dynamic type
// is always the one matching Kind: int16, int32, int64, string, float32,
// float64, time.Time or []byte.
func (v Value) Interface() any { return v.v }

func (v Value) Int16() (int16, bool)         { x, ok := v.v.(int16); return x, ok }
func (v Value) Int32() (int32, bool)         { x, ok := v.v.(int32); return x, ok }
func (v Value) Int64() (int64, bool)         { x, ok := v.v.(int64); return x, ok }
func (v Value) Str() (string, bool)          { x, ok := v.v.(string); return x, ok }
func (v Value) Float32() (float32, bool)     { x, ok := v.v.(float32); return x, ok }
func (v Value) Float64() (float64, bool)     { x, ok := v.v.(float64); return x, ok }
func (v Value) Timestamp() (time.Time, bool) { x, ok := v.v.(time.Time); return x, ok }
func (v Value) Blob() ([]byte, bool)         { x, ok := v.v.([]byte); return x, ok }

// Equal reports whether v and o hold the same variant and value. Timestamps
// compare with time.Time.Equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Invalid:
		return true
	case Timestamp:
		return v.v.(time.Time).Equal(o.v.(time.Time))
	case Blob:
		return string(v.v.([]byte)) == string(o.v.([]byte))
	default:
		return v.v == o.v
	}
}

// String renders v for diagnostics.
func (v Value) String() string {
	switch x := v.v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []byte:
		return fmt.Sprintf("[%d bytes]", len(x))
	default:
		return fmt.Sprint(x)
	}
}

// timeLayouts are tried in order when a timestamp arrives as text, which is
// how SQLite stores it and how MySQL reports it without parseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Convert coerces a raw Go value (a driver result, or a value handed to an
// attribute binding) into a Value of the requested kind. nil always yields
// null. Narrowing integer conversions that would overflow are rejected.
func Convert(kind Kind, raw any) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	if v, ok := raw.(Value); ok {
		if v.IsNull() {
			return v, nil
		}
		raw = v.v
	}

	switch kind {
	case Int16, Int32, Int64:
		n, err := toInt64(raw)
		if err != nil {
			return Null(), fmt.Errorf("column: convert %T to %s: %w", raw, kind, err)
		}
		switch kind {
		case Int16:
			if n < math.MinInt16 || n > math.MaxInt16 {
				return Null(), fmt.Errorf("column: %d overflows int16", n)
			}
			return Int16Value(int16(n)), nil
		case Int32:
			if n < math.MinInt32 || n > math.MaxInt32 {
				return Null(), fmt.Errorf("column: %d overflows int32", n)
			}
			return Int32Value(int32(n)), nil
		default:
			return Int64Value(n), nil
		}

	case Float32, Float64:
		f, err := toFloat64(raw)
		if err != nil {
			return Null(), fmt.Errorf("column: convert %T to %s: %w", raw, kind, err)
		}
		if kind == Float32 {
			return Float32Value(float32(f)), nil
		}
		return Float64Value(f), nil

	case String:
		switch x := raw.(type) {
		case string:
			return StringValue(x), nil
		case []byte:
			return StringValue(string(x)), nil
		case fmt.Stringer:
			return StringValue(x.String()), nil
		default:
			return Null(), fmt.Errorf("column: convert %T to string: unsupported", raw)
		}

	case Timestamp:
		switch x := raw.(type) {
		case time.Time:
			return TimestampValue(x), nil
		case string:
			return parseTime(x)
		case []byte:
			return parseTime(string(x))
		case int64:
			return TimestampValue(time.Unix(x, 0).UTC()), nil
		default:
			return Null(), fmt.Errorf("column: convert %T to timestamp: unsupported", raw)
		}

	case Blob:
		switch x := raw.(type) {
		case []byte:
			return BlobValue(x), nil
		case string:
			return BlobValue([]byte(x)), nil
		default:
			return Null(), fmt.Errorf("column: convert %T to blob: unsupported", raw)
		}
	}
	return Null(), fmt.Errorf("column: unsupported kind %s", kind)
}

func parseTime(s string) (Value, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimestampValue(t), nil
		}
	}
	return Null(), fmt.Errorf("column: cannot parse %q as timestamp", s)
}

func toInt64(raw any) (int64, error) {
	switch x := raw.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported")
	}
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int64(f), nil
}

func toFloat64(raw any) (float64, error) {
	switch x := raw.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
	default:
		n, err := toInt64(raw)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
}
