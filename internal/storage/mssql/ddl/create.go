package ddl

import (
	"fmt"
	"strconv"
	"strings"

	gddl "casmidb/internal/ddl"
	"casmidb/pkg/sqlgen"
)

func init() { sqlgen.Register(Dialect{}) }

// Dialect renders statements for SQL Server: bracket identifiers and "@pN"
// placeholders.
type Dialect struct{}

func (Dialect) Kind() string { return "mssql" }

func (Dialect) QuoteIdent(id string) string { return gddl.QuoteFQN(id, quoteIdent) }

func (Dialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

func (Dialect) CreateTable(t sqlgen.Table) (string, error) {
	return BuildCreateTableSQL(gddl.FromColumns(t.Name, t.PrimaryKey, t.AutoPrimaryKey, t.Columns, MapType, AutoKey))
}

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist.
//
// The generated script has the form:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL] [DEFAULT expr],
//	    [col2] TYPE,
//	    PRIMARY KEY ([pk])
//	  );
//	END;
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, hence the guard.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, cols, err := gddl.RenderColumns("mssql ddl", t, quoteIdent)
	if err != nil {
		return "", err
	}

	fqnQuoted := gddl.QuoteFQN(fqn, quoteIdent)
	stmt := fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqnQuoted, "'", "''"),
		fqnQuoted,
		strings.Join(cols, ",\n    "),
	)
	return stmt, nil
}

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
