package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect rewrites queries written with ? placeholders for the target driver.
type dialect struct {
	driver string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
		return dialect{driver: driver}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// rebind converts ? placeholders to $n for postgres. Placeholders inside
// quoted identifiers or literals are not expected in generated queries.
func (d dialect) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quoteIdent quotes a table or column name. Both drivers accept the SQL
// standard double quote.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
