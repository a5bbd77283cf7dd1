// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render simple CREATE TABLE statements from that model.
//
// The package stays generic: it does not assume any specific SQL dialect. In
// particular, it:
//
//   - Does not quote identifiers unless the caller passes a quote function.
//   - Does not insert dialect-specific clauses such as IF NOT EXISTS.
//
// Backend-specific packages (internal/storage/<kind>/ddl) supply their type
// mapping and quoting and wrap the rendered column list in their own
// statement form. A column renders as
//
//	<Name> <SQLType> [NOT NULL]
//
// with NOT NULL added when Nullable is false. AutoIncrement columns render
// as <Name> <SQLType> only; other PrimaryKey columns are collected into a
// trailing PRIMARY KEY (...) clause.
package ddl

import (
	"fmt"
	"strings"
)

// RenderColumns validates t and renders its column definitions (plus a
// trailing PRIMARY KEY clause when needed) with identifiers passed through
// quote. prefix labels error messages ("sqlite ddl", "mssql ddl", ...). The
// returned table name is trimmed but not quoted.
func RenderColumns(prefix string, t TableDef, quote func(string) string) (string, []string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", nil, fmt.Errorf("%s: table FQN must not be empty", prefix)
	}
	if len(t.Columns) == 0 {
		return "", nil, fmt.Errorf("%s: at least one column is required", prefix)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", nil, fmt.Errorf("%s: column with empty name in table %s", prefix, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", nil, fmt.Errorf("%s: column %s missing SQLType", prefix, name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if c.AutoIncrement {
			cols = append(cols, sb.String())
			continue
		}

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return fqn, cols, nil
}

// QuoteFQN quotes each non-empty dotted segment of fqn with quote.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
