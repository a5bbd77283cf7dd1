package ddl

import (
	"fmt"
	"strings"

	gddl "casmidb/internal/ddl"
	"casmidb/pkg/sqlgen"
)

func init() { sqlgen.Register(Dialect{}) }

// Dialect renders statements for SQLite: double-quoted identifiers, "?"
// placeholders and CREATE TABLE IF NOT EXISTS.
type Dialect struct{}

func (Dialect) Kind() string { return "sqlite" }

func (Dialect) QuoteIdent(id string) string { return gddl.QuoteFQN(id, quoteIdent) }

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) CreateTable(t sqlgen.Table) (string, error) {
	return BuildCreateTableSQL(gddl.FromColumns(t.Name, t.PrimaryKey, t.AutoPrimaryKey, t.Columns, MapType, AutoKey))
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition. The statement has the form:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk")
//	);
//
// TableDef.FQN is interpreted as a table name; if it contains dots (e.g.,
// "main.events"), each segment is individually quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.RenderColumns("sqlite ddl", t, quoteIdent)
	if err != nil {
		return "", err
	}
	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		gddl.QuoteFQN(fqn, quoteIdent),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
