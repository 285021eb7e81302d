package sql

import (
	"strconv"
	"strings"

	"github.com/repairtrack/repairdb/dialect"
)

// Builder is the base SQL string builder. It quotes identifiers and
// numbers placeholders according to its dialect.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// NewBuilder returns an empty Builder for the given dialect.
func NewBuilder(dialect string) *Builder {
	return &Builder{dialect: dialect}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString appends s to the statement.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Byte appends c to the statement.
func (b *Builder) Byte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad appends a space.
func (b *Builder) Pad() *Builder { return b.Byte(' ') }

// Quote quotes a single identifier.
func (b *Builder) Quote(ident string) string {
	return quote(b.dialect, ident)
}

// Ident writes an identifier. Qualified names ("t.c") are quoted part by
// part, and expressions or already quoted identifiers are written as is.
func (b *Builder) Ident(s string) *Builder {
	switch {
	case s == "*", !isIdent(s):
		b.WriteString(s)
	default:
		for i, part := range strings.Split(s, ".") {
			if i > 0 {
				b.Byte('.')
			}
			b.WriteString(b.Quote(part))
		}
	}
	return b
}

// Arg appends an argument and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		return b.WriteString("$" + strconv.Itoa(len(b.args)))
	}
	return b.Byte('?')
}

// Args writes a comma separated list of placeholders.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// Wrap writes the output of f between parentheses.
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.Byte('(')
	f(b)
	return b.Byte(')')
}

// Query returns the statement and its arguments.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// String returns the statement.
func (b *Builder) String() string { return b.sb.String() }

func quote(d, ident string) string {
	q := `"`
	if d == dialect.MySQL {
		q = "`"
	}
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// isIdent reports whether s is a plain, possibly qualified, identifier.
func isIdent(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for _, r := range s {
		switch {
		case r == '_' || r == '.':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// DialectBuilder creates statement builders for a dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect returns a DialectBuilder for the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Quote quotes an identifier.
func (d *DialectBuilder) Quote(ident string) string { return quote(d.dialect, ident) }

// Select returns a Selector selecting the given columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{dialect: d.dialect, columns: columns}
}

// Insert returns an InsertBuilder for the given table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{dialect: d.dialect, table: table}
}

// Update returns an UpdateBuilder for the given table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d.dialect, table: table}
}

// Delete returns a DeleteBuilder for the given table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{dialect: d.dialect, table: table}
}

// Predicate is a boolean expression written into a Builder.
type Predicate func(*Builder)

func compare(col, op string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(col).Pad().WriteString(op).Pad().Arg(v)
	}
}

// EQ returns a "col = v" predicate.
func EQ(col string, v any) Predicate { return compare(col, "=", v) }

// NEQ returns a "col <> v" predicate.
func NEQ(col string, v any) Predicate { return compare(col, "<>", v) }

// LT returns a "col < v" predicate.
func LT(col string, v any) Predicate { return compare(col, "<", v) }

// LTE returns a "col <= v" predicate.
func LTE(col string, v any) Predicate { return compare(col, "<=", v) }

// GT returns a "col > v" predicate.
func GT(col string, v any) Predicate { return compare(col, ">", v) }

// GTE returns a "col >= v" predicate.
func GTE(col string, v any) Predicate { return compare(col, ">=", v) }

// ColumnsEQ returns a "c1 = c2" predicate.
func ColumnsEQ(c1, c2 string) Predicate {
	return func(b *Builder) {
		b.Ident(c1).WriteString(" = ").Ident(c2)
	}
}

// In returns a "col IN (vs)" predicate. An empty list matches nothing.
func In(col string, vs ...any) Predicate {
	if len(vs) == 0 {
		return False()
	}
	return func(b *Builder) {
		b.Ident(col).WriteString(" IN ").Wrap(func(b *Builder) { b.Args(vs...) })
	}
}

// NotIn returns a "col NOT IN (vs)" predicate. An empty list matches everything.
func NotIn(col string, vs ...any) Predicate {
	if len(vs) == 0 {
		return True()
	}
	return func(b *Builder) {
		b.Ident(col).WriteString(" NOT IN ").Wrap(func(b *Builder) { b.Args(vs...) })
	}
}

// IsNull returns a "col IS NULL" predicate.
func IsNull(col string) Predicate {
	return func(b *Builder) { b.Ident(col).WriteString(" IS NULL") }
}

// NotNull returns a "col IS NOT NULL" predicate.
func NotNull(col string) Predicate {
	return func(b *Builder) { b.Ident(col).WriteString(" IS NOT NULL") }
}

// True returns an always true predicate.
func True() Predicate {
	return func(b *Builder) { b.WriteString("1 = 1") }
}

// False returns an always false predicate.
func False() Predicate {
	return func(b *Builder) { b.WriteString("1 = 0") }
}

// And joins predicates with AND. An empty list is true.
func And(preds ...Predicate) Predicate {
	return join("AND", True, preds)
}

// Or joins predicates with OR. An empty list is false.
func Or(preds ...Predicate) Predicate {
	return join("OR", False, preds)
}

func join(op string, empty func() Predicate, preds []Predicate) Predicate {
	switch len(preds) {
	case 0:
		return empty()
	case 1:
		return preds[0]
	}
	return func(b *Builder) {
		b.Wrap(func(b *Builder) {
			for i, p := range preds {
				if i > 0 {
					b.Pad().WriteString(op).Pad()
				}
				b.Wrap(p)
			}
		})
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(b *Builder) {
		b.WriteString("NOT ").Wrap(p)
	}
}

// Exists returns an "EXISTS (subquery)" predicate.
func Exists(s *Selector) Predicate {
	return func(b *Builder) {
		b.WriteString("EXISTS ").Wrap(s.render)
	}
}

// NotExists returns a "NOT EXISTS (subquery)" predicate.
func NotExists(s *Selector) Predicate {
	return func(b *Builder) {
		b.WriteString("NOT EXISTS ").Wrap(s.render)
	}
}

// Compare returns a predicate comparing an expression, e.g. an aggregate,
// with a value using one of =, <>, <, <=, >, >=.
func Compare(expr, op string, v any) Predicate { return compare(expr, op, v) }

// InExpr returns an "expr IN (vs)" predicate for arbitrary expressions.
func InExpr(expr string, vs ...any) Predicate { return In(expr, vs...) }

// EscapeLike escapes the LIKE wildcards of s with a backslash.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func escapeGlob(s string) string {
	return strings.NewReplacer(`[`, `[[]`, `*`, `[*]`, `?`, `[?]`).Replace(s)
}

// match builds a case-sensitive pattern predicate. LIKE is case-insensitive
// on SQLite and on MySQL's default collations, hence GLOB and LIKE BINARY.
func match(col, prefix, s, suffix string) Predicate {
	return func(b *Builder) {
		switch b.dialect {
		case dialect.SQLite:
			b.Ident(col).WriteString(" GLOB ").Arg(glob(prefix) + escapeGlob(s) + glob(suffix))
		case dialect.MySQL:
			b.Ident(col).WriteString(" LIKE BINARY ").Arg(prefix + EscapeLike(s) + suffix).WriteString(` ESCAPE '\\'`)
		default:
			b.Ident(col).WriteString(" LIKE ").Arg(prefix + EscapeLike(s) + suffix).WriteString(` ESCAPE '\'`)
		}
	}
}

func glob(wildcard string) string {
	if wildcard == "%" {
		return "*"
	}
	return ""
}

// foldMatch builds a case-insensitive pattern predicate over the folded
// column.
func foldMatch(col, prefix, s, suffix string) Predicate {
	return func(b *Builder) {
		b.WriteString(foldFunc(b.dialect)).Byte('(').Ident(col).WriteString(") LIKE ").Arg(prefix + EscapeLike(Fold(s)) + suffix)
		if b.dialect == dialect.MySQL {
			b.WriteString(` ESCAPE '\\'`)
		} else {
			b.WriteString(` ESCAPE '\'`)
		}
	}
}

// Contains returns a case-sensitive substring predicate.
func Contains(col, s string) Predicate { return match(col, "%", s, "%") }

// HasPrefix returns a case-sensitive prefix predicate.
func HasPrefix(col, s string) Predicate { return match(col, "", s, "%") }

// HasSuffix returns a case-sensitive suffix predicate.
func HasSuffix(col, s string) Predicate { return match(col, "%", s, "") }

// ContainsFold returns a case-insensitive substring predicate.
func ContainsFold(col, s string) Predicate { return foldMatch(col, "%", s, "%") }

// HasPrefixFold returns a case-insensitive prefix predicate.
func HasPrefixFold(col, s string) Predicate { return foldMatch(col, "", s, "%") }

// HasSuffixFold returns a case-insensitive suffix predicate.
func HasSuffixFold(col, s string) Predicate { return foldMatch(col, "%", s, "") }

// EqualFold returns a case-insensitive equality predicate.
func EqualFold(col, s string) Predicate {
	return func(b *Builder) {
		b.WriteString(foldFunc(b.dialect)).Byte('(').Ident(col).WriteString(") = ").Arg(Fold(s))
	}
}

// Count returns a COUNT expression. Arguments of the aggregate helpers
// are expected to be quoted already, e.g. with Selector.C.
func Count(col string) string { return "COUNT(" + col + ")" }

// Avg returns an AVG expression.
func Avg(col string) string { return "AVG(" + col + ")" }

// Sum returns a SUM expression.
func Sum(col string) string { return "SUM(" + col + ")" }

// Min returns a MIN expression.
func Min(col string) string { return "MIN(" + col + ")" }

// Max returns a MAX expression.
func Max(col string) string { return "MAX(" + col + ")" }

// As aliases an expression. The alias must be a plain identifier.
func As(expr, alias string) string { return expr + " AS " + alias }

// Asc returns an ascending ORDER BY term.
func Asc(col string) string { return col + " ASC" }

// Desc returns a descending ORDER BY term.
func Desc(col string) string { return col + " DESC" }

// Selector is a SELECT statement builder.
type Selector struct {
	dialect  string
	columns  []string
	table    string
	sub      *Selector
	as       string
	where    Predicate
	group    []string
	having   Predicate
	order    []string
	limit    *int
	offset   *int
	distinct bool
}

// Select replaces the selected columns.
func (s *Selector) Select(columns ...string) *Selector {
	s.columns = columns
	return s
}

// AppendSelect adds columns to the selection.
func (s *Selector) AppendSelect(columns ...string) *Selector {
	s.columns = append(s.columns, columns...)
	return s
}

// From sets the source table.
func (s *Selector) From(table string) *Selector {
	s.table, s.sub = table, nil
	return s
}

// FromSelect sets a subquery as the source. It should be aliased with As.
func (s *Selector) FromSelect(sub *Selector) *Selector {
	s.table, s.sub = "", sub
	return s
}

// As sets the alias of the source.
func (s *Selector) As(alias string) *Selector {
	s.as = alias
	return s
}

// Alias returns the name the source is referenced by.
func (s *Selector) Alias() string {
	if s.as != "" {
		return s.as
	}
	return s.table
}

// C returns the quoted, qualified name of a column of the source.
func (s *Selector) C(column string) string {
	return quote(s.dialect, s.Alias()) + "." + quote(s.dialect, column)
}

// Where adds a predicate, joined with AND to existing ones.
func (s *Selector) Where(p Predicate) *Selector {
	if s.where == nil {
		s.where = p
	} else {
		s.where = And(s.where, p)
	}
	return s
}

// GroupBy sets the GROUP BY columns.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.group = columns
	return s
}

// Having sets the HAVING predicate.
func (s *Selector) Having(p Predicate) *Selector {
	s.having = p
	return s
}

// OrderBy appends ORDER BY terms built with Asc and Desc.
func (s *Selector) OrderBy(terms ...string) *Selector {
	s.order = append(s.order, terms...)
	return s
}

// Limit sets the LIMIT clause.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Distinct adds the DISTINCT keyword.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// Query returns the statement and its arguments.
func (s *Selector) Query() (string, []any) {
	b := NewBuilder(s.dialect)
	s.render(b)
	return b.Query()
}

func (s *Selector) render(b *Builder) {
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.columns) == 0 {
		b.Byte('*')
	}
	for i, c := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
	b.WriteString(" FROM ")
	if s.sub != nil {
		b.Wrap(s.sub.render)
	} else {
		b.Ident(s.table)
	}
	if s.as != "" {
		b.WriteString(" AS ").Ident(s.as)
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where(b)
	}
	if len(s.group) > 0 {
		b.WriteString(" GROUP BY ")
		for i, c := range s.group {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	if s.having != nil {
		b.WriteString(" HAVING ")
		s.having(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.order, ", "))
	}
	switch {
	case s.limit != nil:
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	case s.offset != nil && b.dialect == dialect.SQLite:
		b.WriteString(" LIMIT -1")
	case s.offset != nil && b.dialect == dialect.MySQL:
		b.WriteString(" LIMIT 18446744073709551615")
	}
	if s.offset != nil {
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
}

// InsertBuilder is an INSERT statement builder.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	values    [][]any
	returning []string
	ignore    bool
}

// Columns sets the inserted columns.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = columns
	return i
}

// Values appends a row of values.
func (i *InsertBuilder) Values(vs ...any) *InsertBuilder {
	i.values = append(i.values, vs)
	return i
}

// Returning sets the RETURNING columns. It is ignored by dialects
// without RETURNING support.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// OnConflictDoNothing skips rows violating a unique constraint.
func (i *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	i.ignore = true
	return i
}

// Query returns the statement and its arguments.
func (i *InsertBuilder) Query() (string, []any) {
	b := NewBuilder(i.dialect)
	b.WriteString("INSERT ")
	if i.ignore && i.dialect == dialect.MySQL {
		b.WriteString("IGNORE ")
	}
	b.WriteString("INTO ").Ident(i.table)
	switch {
	case len(i.columns) == 0 && i.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	case len(i.columns) == 0:
		b.WriteString(" DEFAULT VALUES")
	default:
		b.Pad().Wrap(func(b *Builder) {
			for j, c := range i.columns {
				if j > 0 {
					b.WriteString(", ")
				}
				b.Ident(c)
			}
		})
		b.WriteString(" VALUES ")
		for j, row := range i.values {
			if j > 0 {
				b.WriteString(", ")
			}
			b.Wrap(func(b *Builder) { b.Args(row...) })
		}
	}
	if i.ignore && i.dialect != dialect.MySQL {
		b.WriteString(" ON CONFLICT DO NOTHING")
	}
	if len(i.returning) > 0 && i.dialect == dialect.Postgres {
		b.WriteString(" RETURNING ")
		for j, c := range i.returning {
			if j > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	return b.Query()
}

// UpdateBuilder is an UPDATE statement builder.
type UpdateBuilder struct {
	dialect string
	table   string
	sets    []assignment
	where   Predicate
}

type assignment struct {
	column string
	expr   func(*Builder)
}

// Set assigns a value to a column.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	return u.SetExpr(column, func(b *Builder) { b.Arg(v) })
}

// SetNull assigns NULL to a column.
func (u *UpdateBuilder) SetNull(column string) *UpdateBuilder {
	return u.SetExpr(column, func(b *Builder) { b.WriteString("NULL") })
}

// Add adds v to the stored value of a column.
func (u *UpdateBuilder) Add(column string, v any) *UpdateBuilder {
	return u.arith(column, "+", v)
}

// Sub subtracts v from the stored value of a column.
func (u *UpdateBuilder) Sub(column string, v any) *UpdateBuilder {
	return u.arith(column, "-", v)
}

// Mul multiplies the stored value of a column by v.
func (u *UpdateBuilder) Mul(column string, v any) *UpdateBuilder {
	return u.arith(column, "*", v)
}

// Div divides the stored value of a column by v. Integer columns use
// integer division on every dialect.
func (u *UpdateBuilder) Div(column string, v any, integer bool) *UpdateBuilder {
	if integer && u.dialect == dialect.MySQL {
		return u.arith(column, "DIV", v)
	}
	return u.arith(column, "/", v)
}

func (u *UpdateBuilder) arith(column, op string, v any) *UpdateBuilder {
	return u.SetExpr(column, func(b *Builder) {
		b.Ident(column).Pad().WriteString(op).Pad().Arg(v)
	})
}

// SetExpr assigns an expression to a column.
func (u *UpdateBuilder) SetExpr(column string, expr func(*Builder)) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: expr})
	return u
}

// Empty reports whether no column is assigned.
func (u *UpdateBuilder) Empty() bool { return len(u.sets) == 0 }

// Where adds a predicate, joined with AND to existing ones.
func (u *UpdateBuilder) Where(p Predicate) *UpdateBuilder {
	if u.where == nil {
		u.where = p
	} else {
		u.where = And(u.where, p)
	}
	return u
}

// Query returns the statement and its arguments.
func (u *UpdateBuilder) Query() (string, []any) {
	b := NewBuilder(u.dialect)
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, s := range u.sets {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(s.column).WriteString(" = ")
		s.expr(b)
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where(b)
	}
	return b.Query()
}

// DeleteBuilder is a DELETE statement builder.
type DeleteBuilder struct {
	dialect string
	table   string
	where   Predicate
}

// Where adds a predicate, joined with AND to existing ones.
func (d *DeleteBuilder) Where(p Predicate) *DeleteBuilder {
	if d.where == nil {
		d.where = p
	} else {
		d.where = And(d.where, p)
	}
	return d
}

// Query returns the statement and its arguments.
func (d *DeleteBuilder) Query() (string, []any) {
	b := NewBuilder(d.dialect)
	b.WriteString("DELETE FROM ").Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ")
		d.where(b)
	}
	return b.Query()
}
