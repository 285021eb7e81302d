package sqlgraph

import (
	"fmt"
	"strconv"
	"time"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/dialect"
	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// sqliteTime is the storage layout of timestamps on SQLite. The fixed
// width keeps lexicographic and chronological order identical.
const sqliteTime = "2006-01-02 15:04:05.000000000-07:00"

// arg converts a canonical value into a statement argument of field f.
func (e *Engine) arg(f *schema.Scalar, v any) any {
	if v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok && e.dialect == dialect.SQLite {
		v = t.UTC().Format(sqliteTime)
	}
	if f.Sensitive {
		return sql.Redacted{V: v}
	}
	return v
}

// input checks a caller supplied value of field f and converts it into a
// statement argument.
func (e *Engine) input(f *schema.Scalar, v any) (any, error) {
	cv, err := query.InputValue(f.Type, v)
	if err != nil {
		return nil, repairdb.Validationf(f.Name, "%v", err)
	}
	return e.arg(f, cv), nil
}

// stmt hands out the table aliases of one statement.
type stmt struct {
	e *Engine
	n int
}

func (e *Engine) stmt() *stmt { return &stmt{e: e} }

// alias returns the next free alias, t0, t1 and so on.
func (st *stmt) alias() string {
	a := "t" + strconv.Itoa(st.n)
	st.n++
	return a
}

// table returns a selector reading m under a fresh alias.
func (st *stmt) table(m *schema.Model) *sql.Selector {
	return sql.Dialect(st.e.dialect).Select().From(m.Table).As(st.alias())
}

// columns returns the qualified columns of every scalar field of m.
func columns(s *sql.Selector, m *schema.Model) []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = s.C(f.Column)
	}
	return cols
}

// scan reads rows returned for the scalar columns of m into records.
func scan(m *schema.Model, rows []map[string]any) ([]query.Record, error) {
	recs := make([]query.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(query.Record, len(m.Fields))
		for _, f := range m.Fields {
			v, err := query.ScanValue(f.Type, row[f.Column])
			if err != nil {
				return nil, fmt.Errorf("sqlgraph: scanning %s.%s: %w", m.Name, f.Name, err)
			}
			rec[f.Name] = v
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// sameValue compares two canonical values.
func sameValue(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

// compareValues orders two canonical values of the same field. NULL
// sorts first when nullsFirst is set, last otherwise.
func compareValues(a, b any, nullsFirst bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if nullsFirst {
			return -1
		}
		return 1
	case b == nil:
		if nullsFirst {
			return 1
		}
		return -1
	}
	switch a := a.(type) {
	case int64:
		return cmp3(a, b.(int64))
	case float64:
		return cmp3(a, b.(float64))
	case string:
		return cmp3(a, b.(string))
	case time.Time:
		return a.Compare(b.(time.Time))
	case bool:
		bb := b.(bool)
		switch {
		case a == bb:
			return 0
		case !a:
			return -1
		}
		return 1
	}
	return 0
}

func cmp3[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// nullsFirst reports whether NULL sorts before other values in
// ascending order.
func (e *Engine) nullsFirst() bool { return e.dialect != dialect.Postgres }

// ids returns the id values of records.
func ids(recs []query.Record) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.Int(schema.IDField)
	}
	return out
}

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// aggregateType returns the result type of an aggregate over field f.
func aggregateType(agg string, f *schema.Scalar) field.Type {
	switch agg {
	case query.AggCount:
		return field.TypeInt
	case query.AggAvg:
		return field.TypeFloat
	}
	return f.Type
}

// normalizeAggregate restores the canonical types of an aggregate result
// decoded from the cache.
func normalizeAggregate(m *schema.Model, r *query.AggregateResult) error {
	var err error
	if r.By, err = query.NormalizeRecord(m, r.By); err != nil {
		return err
	}
	for agg, values := range map[string]map[string]any{
		query.AggAvg: r.Avg,
		query.AggSum: r.Sum,
		query.AggMin: r.Min,
		query.AggMax: r.Max,
	} {
		for name, v := range values {
			f, ok := m.Field(name)
			if !ok {
				continue
			}
			if values[name], err = query.ScanValue(aggregateType(agg, f), v); err != nil {
				return err
			}
		}
	}
	return nil
}
