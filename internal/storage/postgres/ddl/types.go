// Package ddl contains Postgres-specific helpers for generating DDL and the
// Postgres statement dialect.
package ddl

import "casmidb/pkg/column"

// AutoKey is the complete definition of a synthesized integer key.
const AutoKey = "SERIAL PRIMARY KEY"

// MapType maps a column kind to a Postgres SQL type.
//
//	int16     -> SMALLINT
//	int32     -> INTEGER
//	int64     -> BIGINT
//	float32   -> REAL
//	float64   -> DOUBLE PRECISION
//	timestamp -> TIMESTAMPTZ
//	blob      -> BYTEA
//	string    -> TEXT
func MapType(kind column.Kind, _ bool) string {
	switch kind {
	case column.Int16:
		return "SMALLINT"
	case column.Int32:
		return "INTEGER"
	case column.Int64:
		return "BIGINT"
	case column.Float32:
		return "REAL"
	case column.Float64:
		return "DOUBLE PRECISION"
	case column.Timestamp:
		return "TIMESTAMPTZ"
	case column.Blob:
		return "BYTEA"
	default:
		return "TEXT"
	}
}
