// Package ddl contains MSSQL-specific helpers for generating DDL and the
// SQL Server statement dialect.
//
// The type mapping is conservative and biased toward safe, widely-supported
// choices.
package ddl

import "casmidb/pkg/column"

// AutoKey is the complete definition of a synthesized integer key.
const AutoKey = "INT IDENTITY(1,1) PRIMARY KEY"

// MapType maps a column kind to a SQL Server column type.
//
// Strings use a bounded NVARCHAR so that they can be primary keys;
// NVARCHAR(MAX) cannot be indexed.
func MapType(kind column.Kind, _ bool) string {
	switch kind {
	case column.Int16:
		return "SMALLINT"
	case column.Int32:
		return "INT"
	case column.Int64:
		return "BIGINT"
	case column.Float32:
		return "REAL"
	case column.Float64:
		return "FLOAT"
	case column.Timestamp:
		return "DATETIME2"
	case column.Blob:
		return "VARBINARY(MAX)"
	default:
		return "NVARCHAR(255)"
	}
}
