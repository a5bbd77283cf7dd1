package ddl

import "casmidb/pkg/column"

// ColumnDef describes a single column in a table definition. It uses simple,
// database-agnostic fields.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - AutoIncrement: SQLType already carries the dialect's complete
//     auto-increment key clause and is emitted verbatim
type ColumnDef struct {
	Name          string
	SQLType       string
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
}

// TableDef holds the table name (FQN) and an ordered list of columns. The
// FQN may be in dotted form ("schema.table") and is quoted by renderers.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TypeMapper maps a column kind to a dialect SQL type. key is true for the
// primary key column.
type TypeMapper func(kind column.Kind, key bool) string

// FromColumns builds a TableDef for an entity table: the primary key first,
// then every other column in order. With auto set, the key column uses
// autoKey as its complete definition.
func FromColumns(table string, pk column.Column, auto bool, cols []column.Column, mapType TypeMapper, autoKey string) TableDef {
	def := TableDef{FQN: table, Columns: make([]ColumnDef, 0, len(cols)+1)}

	if auto {
		def.Columns = append(def.Columns, ColumnDef{
			Name:          pk.Field,
			SQLType:       autoKey,
			PrimaryKey:    true,
			AutoIncrement: true,
		})
	} else {
		def.Columns = append(def.Columns, ColumnDef{
			Name:       pk.Field,
			SQLType:    mapType(pk.Kind, true),
			PrimaryKey: true,
		})
	}

	for _, c := range cols {
		def.Columns = append(def.Columns, ColumnDef{
			Name:     c.Field,
			SQLType:  mapType(c.Kind, false),
			Nullable: true,
		})
	}
	return def
}
