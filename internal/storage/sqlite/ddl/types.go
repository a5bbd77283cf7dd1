// Package ddl contains SQLite-specific helpers for generating DDL and the
// SQLite statement dialect.
package ddl

import "casmidb/pkg/column"

// AutoKey is the complete definition of a synthesized integer key. SQLite
// only allows AUTOINCREMENT on an INTEGER PRIMARY KEY column.
const AutoKey = "INTEGER PRIMARY KEY AUTOINCREMENT"

// MapType maps a column kind to a SQLite column type.
//
// SQLite uses dynamic typing, so this mapping picks canonical affinities:
//   - integer kinds -> INTEGER
//   - float kinds   -> REAL
//   - timestamp     -> TIMESTAMP (the driver stores time.Time as text and
//     parses it back for columns declared this way)
//   - blob          -> BLOB
//   - others        -> TEXT
func MapType(kind column.Kind, _ bool) string {
	switch kind {
	case column.Int16, column.Int32, column.Int64:
		return "INTEGER"
	case column.Float32, column.Float64:
		return "REAL"
	case column.Timestamp:
		return "TIMESTAMP"
	case column.Blob:
		return "BLOB"
	default:
		return "TEXT"
	}
}
