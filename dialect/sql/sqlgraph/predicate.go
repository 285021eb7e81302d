package sqlgraph

import (
	"fmt"

	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/schema"
)

// where compiles preds, joined with AND, into a predicate over the rows
// of s. It returns nil for an empty list.
func (st *stmt) where(m *schema.Model, s *sql.Selector, preds []query.Predicate) (sql.Predicate, error) {
	if len(preds) == 0 {
		return nil, nil
	}
	ps, err := st.preds(m, s, preds)
	if err != nil {
		return nil, err
	}
	return sql.And(ps...), nil
}

// filter adds the compiled preds to the WHERE clause of s.
func (st *stmt) filter(m *schema.Model, s *sql.Selector, preds []query.Predicate) error {
	p, err := st.where(m, s, preds)
	if err != nil {
		return err
	}
	if p != nil {
		s.Where(p)
	}
	return nil
}

func (st *stmt) preds(m *schema.Model, s *sql.Selector, preds []query.Predicate) ([]sql.Predicate, error) {
	out := make([]sql.Predicate, 0, len(preds))
	for _, p := range preds {
		cp, err := st.pred(m, s, p)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (st *stmt) pred(m *schema.Model, s *sql.Selector, p query.Predicate) (sql.Predicate, error) {
	switch p.Op {
	case query.OpAnd, query.OpOr, query.OpNot:
		ps, err := st.preds(m, s, p.Preds)
		if err != nil {
			return nil, err
		}
		switch p.Op {
		case query.OpAnd:
			return sql.And(ps...), nil
		case query.OpOr:
			return sql.Or(ps...), nil
		}
		return sql.Not(sql.Or(ps...)), nil
	case query.OpSome, query.OpEvery, query.OpNone, query.OpIs, query.OpIsNot:
		return st.relation(m, s, p)
	}
	f, ok := m.Field(p.Field)
	if !ok {
		return nil, fmt.Errorf("sqlgraph: unknown field %s.%s", m.Name, p.Field)
	}
	return st.e.leaf(f, s.C(f.Column), p)
}

// relation compiles a quantifier into a correlated EXISTS subquery.
func (st *stmt) relation(m *schema.Model, s *sql.Selector, p query.Predicate) (sql.Predicate, error) {
	rel, ok := m.Relation(p.Field)
	if !ok {
		return nil, fmt.Errorf("sqlgraph: unknown relation %s.%s", m.Name, p.Field)
	}
	sub := st.table(rel.Target).Select("1")
	if rel.Owner {
		sub.Where(sql.ColumnsEQ(sub.C(rel.Target.ID.Column), s.C(rel.FK.Column)))
	} else {
		sub.Where(sql.ColumnsEQ(sub.C(rel.FK.Column), s.C(m.ID.Column)))
	}
	inner, err := st.where(rel.Target, sub, p.Preds)
	if err != nil {
		return nil, err
	}
	switch p.Op {
	case query.OpEvery:
		if inner == nil {
			return sql.True(), nil
		}
		return sql.NotExists(sub.Where(sql.Not(inner))), nil
	case query.OpNone, query.OpIsNot:
		if inner != nil {
			sub.Where(inner)
		}
		return sql.NotExists(sub), nil
	default:
		if inner != nil {
			sub.Where(inner)
		}
		return sql.Exists(sub), nil
	}
}

var comparators = map[query.Op]string{
	query.OpEQ:  "=",
	query.OpNEQ: "<>",
	query.OpLT:  "<",
	query.OpLTE: "<=",
	query.OpGT:  ">",
	query.OpGTE: ">=",
}

// leaf compiles a scalar predicate over the column expression col.
func (e *Engine) leaf(f *schema.Scalar, col string, p query.Predicate) (sql.Predicate, error) {
	fold := p.Mode == query.ModeInsensitive
	switch p.Op {
	case query.OpIsNull:
		return sql.IsNull(col), nil
	case query.OpNotNull:
		return sql.NotNull(col), nil
	case query.OpEQ, query.OpNEQ:
		if p.Value == nil {
			if p.Op == query.OpEQ {
				return sql.IsNull(col), nil
			}
			return sql.NotNull(col), nil
		}
	case query.OpContains, query.OpHasPrefix, query.OpHasSuffix:
		s, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: %s expects a string, got %T", p.Op, p.Value)
		}
		switch {
		case p.Op == query.OpContains && fold:
			return sql.ContainsFold(col, s), nil
		case p.Op == query.OpContains:
			return sql.Contains(col, s), nil
		case p.Op == query.OpHasPrefix && fold:
			return sql.HasPrefixFold(col, s), nil
		case p.Op == query.OpHasPrefix:
			return sql.HasPrefix(col, s), nil
		case fold:
			return sql.HasSuffixFold(col, s), nil
		}
		return sql.HasSuffix(col, s), nil
	case query.OpIn, query.OpNotIn:
		vs, ok := query.SliceValues(p.Value)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: %s expects a list, got %T", p.Op, p.Value)
		}
		args := make([]any, len(vs))
		for i, v := range vs {
			a, err := e.foldArg(f, v, fold)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		expr := col
		if fold {
			expr = sql.FoldExpr(e.dialect, col)
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
		return nil, fmt.Errorf("sqlgraph: unknown operator %q", p.Op)
	}
	if fold && p.Op == query.OpEQ {
		s, _ := p.Value.(string)
		return sql.EqualFold(col, s), nil
	}
	if fold && p.Op == query.OpNEQ {
		s, _ := p.Value.(string)
		return sql.Not(sql.EqualFold(col, s)), nil
	}
	a, err := e.foldArg(f, p.Value, fold)
	if err != nil {
		return nil, err
	}
	if fold {
		col = sql.FoldExpr(e.dialect, col)
	}
	return sql.Compare(col, op, a), nil
}

func (e *Engine) foldArg(f *schema.Scalar, v any, fold bool) (any, error) {
	if s, ok := v.(string); ok && fold {
		v = sql.Fold(s)
	}
	return e.input(f, v)
}

// after returns a predicate matching the rows strictly after v in the
// ordering of col. The direction is ascending unless desc is set.
func (e *Engine) after(col string, v any, desc bool) sql.Predicate {
	greater := !desc
	// NULL is the smallest value when it sorts first in ascending order.
	nullSmall := e.nullsFirst()
	switch {
	case greater && nullSmall:
		if v == nil {
			return sql.NotNull(col)
		}
		return sql.GT(col, v)
	case greater:
		if v == nil {
			return sql.False()
		}
		return sql.Or(sql.GT(col, v), sql.IsNull(col))
	case nullSmall:
		if v == nil {
			return sql.False()
		}
		return sql.Or(sql.LT(col, v), sql.IsNull(col))
	default:
		if v == nil {
			return sql.NotNull(col)
		}
		return sql.LT(col, v)
	}
}

// equal matches rows whose col equals v, NULL included.
func equal(col string, v any) sql.Predicate {
	if v == nil {
		return sql.IsNull(col)
	}
	return sql.EQ(col, v)
}
