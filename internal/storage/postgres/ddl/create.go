package ddl

import (
	"fmt"
	"strconv"
	"strings"

	gddl "casmidb/internal/ddl"
	"casmidb/pkg/sqlgen"
)

func init() { sqlgen.Register(Dialect{}) }

// Dialect renders statements for Postgres: double-quoted identifiers and
// "$n" placeholders.
type Dialect struct{}

func (Dialect) Kind() string { return "postgres" }

func (Dialect) QuoteIdent(id string) string { return gddl.QuoteFQN(id, quoteIdent) }

func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Dialect) CreateTable(t sqlgen.Table) (string, error) {
	return BuildCreateTableSQL(gddl.FromColumns(t.Name, t.PrimaryKey, t.AutoPrimaryKey, t.Columns, MapType, AutoKey))
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// for the given table definition. A dotted FQN ("public.events") is quoted
// segment by segment.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.RenderColumns("postgres ddl", t, quoteIdent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		gddl.QuoteFQN(fqn, quoteIdent),
		strings.Join(cols, ",\n  "),
	), nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
