package sqlgraph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

func (e *Engine) count(ctx context.Context, m *schema.Model, args *query.CountArgs) (int64, error) {
	st := e.stmt()
	p := pagination{where: args.Where, orderBy: args.OrderBy, cursor: args.Cursor, take: args.Take, skip: args.Skip}
	var s *sql.Selector
	if p.paginated() {
		inner, ok, err := e.page(ctx, st, m, p)
		if err != nil || !ok {
			return 0, err
		}
		inner.Select(inner.C(m.ID.Column))
		s = sql.Dialect(e.dialect).Select().FromSelect(inner).As(st.alias())
	} else {
		s = st.table(m)
		if err := st.filter(m, s, p.where); err != nil {
			return 0, err
		}
	}
	rows, err := e.rows(ctx, s.Select(sql.As(sql.Count("*"), "cnt")))
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	n, err := query.ScanValue(field.TypeInt, rows[0]["cnt"])
	if err != nil || n == nil {
		return 0, err
	}
	return n.(int64), nil
}

// aggItem is one selected aggregate, returned under alias.
type aggItem struct {
	alias string
	agg   string
	name  string
	f     *schema.Scalar // nil for the count of all records
}

func aggItems(m *schema.Model, a query.Aggregates) []aggItem {
	var items []aggItem
	add := func(agg string, names []string) {
		for _, name := range names {
			f, _ := m.Field(name)
			items = append(items, aggItem{alias: "agg_" + strconv.Itoa(len(items)), agg: agg, name: name, f: f})
		}
	}
	add(query.AggCount, a.Count)
	add(query.AggAvg, a.Avg)
	add(query.AggSum, a.Sum)
	add(query.AggMin, a.Min)
	add(query.AggMax, a.Max)
	return items
}

// aggExpr returns the SQL expression of agg over the column of f in s.
func aggExpr(s *sql.Selector, agg string, f *schema.Scalar) string {
	if f == nil {
		return sql.Count("*")
	}
	col := s.C(f.Column)
	switch agg {
	case query.AggCount:
		return sql.Count(col)
	case query.AggAvg:
		return sql.Avg(col)
	case query.AggSum:
		return sql.Sum(col)
	case query.AggMin:
		return sql.Min(col)
	}
	return sql.Max(col)
}

// newAggregate returns a result with the maps of the selected aggregates
// allocated and every value zeroed.
func newAggregate(items []aggItem) *query.AggregateResult {
	res := &query.AggregateResult{}
	for _, it := range items {
		switch it.agg {
		case query.AggCount:
			if res.Count == nil {
				res.Count = make(map[string]int64)
			}
			res.Count[it.name] = 0
		default:
			aggValues(res, it.agg)[it.name] = nil
		}
	}
	return res
}

func fill(res *query.AggregateResult, items []aggItem, row map[string]any) error {
	for _, it := range items {
		typ := field.TypeInt
		if it.f != nil {
			typ = aggregateType(it.agg, it.f)
		}
		v, err := query.ScanValue(typ, row[it.alias])
		if err != nil {
			return fmt.Errorf("sqlgraph: scanning %s(%s): %w", it.agg, it.name, err)
		}
		if it.agg == query.AggCount {
			n, _ := v.(int64)
			res.Count[it.name] = n
			continue
		}
		aggValues(res, it.agg)[it.name] = v
	}
	return nil
}

// aggValues returns the map of res holding agg, allocating it.
func aggValues(res *query.AggregateResult, agg string) map[string]any {
	var dst *map[string]any
	switch agg {
	case query.AggAvg:
		dst = &res.Avg
	case query.AggSum:
		dst = &res.Sum
	case query.AggMin:
		dst = &res.Min
	default:
		dst = &res.Max
	}
	if *dst == nil {
		*dst = make(map[string]any)
	}
	return *dst
}

func (e *Engine) aggregate(ctx context.Context, m *schema.Model, args *query.AggregateArgs) (*query.AggregateResult, error) {
	st := e.stmt()
	p := pagination{where: args.Where, orderBy: args.OrderBy, cursor: args.Cursor, take: args.Take, skip: args.Skip}
	items := aggItems(m, args.Aggregates)
	res := newAggregate(items)
	var s *sql.Selector
	if p.paginated() {
		inner, ok, err := e.page(ctx, st, m, p)
		if err != nil || !ok {
			return res, err
		}
		inner.Select(columns(inner, m)...)
		s = sql.Dialect(e.dialect).Select().FromSelect(inner).As(st.alias())
	} else {
		s = st.table(m)
		if err := st.filter(m, s, p.where); err != nil {
			return nil, err
		}
	}
	exprs := make([]string, len(items))
	for i, it := range items {
		exprs[i] = sql.As(aggExpr(s, it.agg, it.f), it.alias)
	}
	rows, err := e.rows(ctx, s.Select(exprs...))
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		if err := fill(res, items, rows[0]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (e *Engine) groupBy(ctx context.Context, m *schema.Model, args *query.GroupByArgs) ([]query.AggregateResult, error) {
	st := e.stmt()
	s := st.table(m)
	if err := st.filter(m, s, args.Where); err != nil {
		return nil, err
	}
	by := make([]*schema.Scalar, len(args.By))
	cols := make([]string, len(args.By))
	for i, name := range args.By {
		f, ok := m.Field(name)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: unknown field %s.%s", m.Name, name)
		}
		by[i], cols[i] = f, s.C(f.Column)
	}
	items := aggItems(m, args.Aggregates)
	selection := append([]string{}, cols...)
	for _, it := range items {
		selection = append(selection, sql.As(aggExpr(s, it.agg, it.f), it.alias))
	}
	s.Select(selection...).GroupBy(cols...)
	if len(args.Having) > 0 {
		having, err := e.having(m, s, args.Having)
		if err != nil {
			return nil, err
		}
		s.Having(sql.And(having...))
	}
	back := args.Take != nil && *args.Take < 0
	for _, o := range args.OrderBy {
		var expr string
		if o.Aggregate != "" {
			f, _ := m.Field(o.Field)
			expr = aggExpr(s, o.Aggregate, f)
		} else {
			f, _ := m.Field(o.Field)
			expr = s.C(f.Column)
		}
		if o.Desc() != back {
			s.OrderBy(sql.Desc(expr))
		} else {
			s.OrderBy(sql.Asc(expr))
		}
	}
	if args.Skip > 0 {
		s.Offset(args.Skip)
	}
	if args.Take != nil {
		s.Limit(abs(*args.Take))
	}
	rows, err := e.rows(ctx, s)
	if err != nil {
		return nil, err
	}
	groups := make([]query.AggregateResult, len(rows))
	for i, row := range rows {
		res := newAggregate(items)
		res.By = make(query.Record, len(by))
		for _, f := range by {
			if res.By[f.Name], err = query.ScanValue(f.Type, row[f.Column]); err != nil {
				return nil, err
			}
		}
		if err := fill(res, items, row); err != nil {
			return nil, err
		}
		groups[i] = *res
	}
	if back {
		reverse(groups)
	}
	return groups, nil
}

// having compiles the HAVING predicates of a groupBy. Leaves naming an
// aggregate compare the aggregate expression, the others a grouped column.
func (e *Engine) having(m *schema.Model, s *sql.Selector, preds []query.Predicate) ([]sql.Predicate, error) {
	out := make([]sql.Predicate, 0, len(preds))
	for _, p := range preds {
		switch p.Op {
		case query.OpAnd, query.OpOr, query.OpNot:
			ps, err := e.having(m, s, p.Preds)
			if err != nil {
				return nil, err
			}
			switch p.Op {
			case query.OpAnd:
				out = append(out, sql.And(ps...))
			case query.OpOr:
				out = append(out, sql.Or(ps...))
			default:
				out = append(out, sql.Not(sql.Or(ps...)))
			}
			continue
		}
		f, _ := m.Field(p.Field)
		if p.Aggregate == "" {
			if f == nil {
				return nil, fmt.Errorf("sqlgraph: unknown field %s.%s", m.Name, p.Field)
			}
			cp, err := e.leaf(f, s.C(f.Column), p)
			if err != nil {
				return nil, err
			}
			out = append(out, cp)
			continue
		}
		cp, err := e.aggregateLeaf(s, f, p)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (e *Engine) aggregateLeaf(s *sql.Selector, f *schema.Scalar, p query.Predicate) (sql.Predicate, error) {
	expr := aggExpr(s, p.Aggregate, f)
	conv := func(v any) (any, error) {
		if p.Aggregate == query.AggCount || p.Aggregate == query.AggAvg || f == nil {
			typ := field.TypeInt
			if f != nil {
				typ = aggregateType(p.Aggregate, f)
			}
			return query.InputValue(typ, v)
		}
		return e.input(f, v)
	}
	switch p.Op {
	case query.OpIsNull:
		return sql.IsNull(expr), nil
	case query.OpNotNull:
		return sql.NotNull(expr), nil
	case query.OpIn, query.OpNotIn:
		vs, ok := query.SliceValues(p.Value)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: %s expects a list, got %T", p.Op, p.Value)
		}
		args := make([]any, len(vs))
		for i, v := range vs {
			a, err := conv(v)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		if p.Op == query.OpIn {
			return sql.InExpr(expr, args...), nil
		}
		if len(args) == 0 {
			return sql.True(), nil
		}
		return sql.Not(sql.InExpr(expr, args...)), nil
	}
	op, ok := comparators[p.Op]
	if !ok {
		return nil, fmt.Errorf("sqlgraph: operator %q is not supported on aggregates", p.Op)
	}
	if p.Value == nil {
		if p.Op == query.OpEQ {
			return sql.IsNull(expr), nil
		}
		return sql.NotNull(expr), nil
	}
	a, err := conv(p.Value)
	if err != nil {
		return nil, err
	}
	return sql.Compare(expr, op, a), nil
}
