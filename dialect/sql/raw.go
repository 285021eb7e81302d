package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/repairtrack/repairdb/dialect"
)

// Raw is a parameterized statement written with "?" placeholders. Every
// value reaches the database as an argument, never as SQL text.
//
//	sql.NewRaw("UPDATE repair_parts SET price = ? WHERE id = ?", 10.5, 3)
type Raw struct {
	SQL  string
	Args []any
}

// NewRaw returns a Raw statement.
func NewRaw(query string, args ...any) Raw {
	return Raw{SQL: query, Args: args}
}

// Query rewrites the placeholders for the given dialect. Question marks
// inside quoted strings and identifiers are left untouched, and the number
// of placeholders must match the number of arguments.
func (r Raw) Query(d string) (string, []any, error) {
	var (
		b     strings.Builder
		n     int
		quote rune
	)
	for _, c := range r.SQL {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			n++
			if d == dialect.Postgres {
				b.WriteString("$" + strconv.Itoa(n))
				continue
			}
		}
		b.WriteRune(c)
	}
	if n != len(r.Args) {
		return "", nil, fmt.Errorf("dialect/sql: raw statement has %d placeholders and %d arguments", n, len(r.Args))
	}
	return b.String(), r.Args, nil
}
