package ddl

import (
	"fmt"
	"strings"

	gddl "casmidb/internal/ddl"
	"casmidb/pkg/sqlgen"
)

func init() { sqlgen.Register(Dialect{}) }

// Dialect renders statements for MySQL: backtick identifiers and "?"
// placeholders.
type Dialect struct{}

func (Dialect) Kind() string { return "mysql" }

func (Dialect) QuoteIdent(id string) string { return gddl.QuoteFQN(id, quoteIdent) }

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) CreateTable(t sqlgen.Table) (string, error) {
	return BuildCreateTableSQL(gddl.FromColumns(t.Name, t.PrimaryKey, t.AutoPrimaryKey, t.Columns, MapType, AutoKey))
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement.
// "db.table" is quoted as `db`.`table`.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.RenderColumns("mysql ddl", t, quoteIdent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		gddl.QuoteFQN(fqn, quoteIdent),
		strings.Join(cols, ",\n  "),
	), nil
}

// quoteIdent quotes with backticks, doubling any embedded backtick.
func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
