// Package ddl contains MySQL-specific helpers for generating DDL and the
// MySQL statement dialect.
package ddl

import "casmidb/pkg/column"

// AutoKey is the complete definition of a synthesized integer key.
const AutoKey = "INT NOT NULL AUTO_INCREMENT PRIMARY KEY"

// MapType maps a column kind to a MySQL column type. Strings map to a
// bounded VARCHAR so that they can serve as (indexed) primary keys.
func MapType(kind column.Kind, _ bool) string {
	switch kind {
	case column.Int16:
		return "SMALLINT"
	case column.Int32:
		return "INT"
	case column.Int64:
		return "BIGINT"
	case column.Float32:
		return "FLOAT"
	case column.Float64:
		return "DOUBLE"
	case column.Timestamp:
		return "DATETIME(6)"
	case column.Blob:
		return "LONGBLOB"
	default:
		return "VARCHAR(255)"
	}
}
