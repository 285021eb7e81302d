package sqlgraph

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/repairtrack/repairdb/contrib/dataloader"
	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// pagination holds the read arguments shared by find, count and aggregate.
type pagination struct {
	where   []query.Predicate
	orderBy []query.Order
	cursor  *query.Unique
	take    *int
	skip    int
}

func paginationOf(q *query.Query) pagination {
	return pagination{where: q.Where, orderBy: q.OrderBy, cursor: q.Cursor, take: q.Take, skip: q.Skip}
}

// backwards reports whether the read starts from the end of the ordered set.
func (p pagination) backwards() bool { return p.take != nil && *p.take < 0 }

// paginated reports whether the read is restricted beyond its where clause.
func (p pagination) paginated() bool { return p.cursor != nil || p.take != nil || p.skip > 0 }

// effectiveOrders appends the id to orders, making every ordering total.
func effectiveOrders(m *schema.Model, orders []query.Order) []query.Order {
	for _, o := range orders {
		if o.Field == m.ID.Name {
			return orders
		}
	}
	return append(slices.Clip(orders), query.Asc(m.ID.Name))
}

func (e *Engine) orderTerms(s *sql.Selector, m *schema.Model, orders []query.Order, flip bool) []string {
	terms := make([]string, 0, len(orders))
	for _, o := range orders {
		f, _ := m.Field(o.Field)
		if o.Desc() != flip {
			terms = append(terms, sql.Desc(s.C(f.Column)))
		} else {
			terms = append(terms, sql.Asc(s.C(f.Column)))
		}
	}
	return terms
}

// page returns a selector over m applying the where clause, the cursor,
// the ordering, skip and take of p. The boolean is false when the cursor
// does not exist, in which case the read is empty.
func (e *Engine) page(ctx context.Context, st *stmt, m *schema.Model, p pagination) (*sql.Selector, bool, error) {
	s := st.table(m)
	if err := st.filter(m, s, p.where); err != nil {
		return nil, false, err
	}
	orders := effectiveOrders(m, p.orderBy)
	back := p.backwards()
	if p.cursor != nil {
		cur, err := e.findOne(ctx, m, p.cursor.Predicates())
		if err != nil || cur == nil {
			return nil, false, err
		}
		s.Where(e.cursorPred(s, m, orders, cur, back))
	}
	s.OrderBy(e.orderTerms(s, m, orders, back)...)
	if p.skip > 0 {
		s.Offset(p.skip)
	}
	if p.take != nil {
		s.Limit(abs(*p.take))
	}
	return s, true, nil
}

// cursorPred matches the cursor row and every row after it in the
// reading direction.
func (e *Engine) cursorPred(s *sql.Selector, m *schema.Model, orders []query.Order, cur query.Record, back bool) sql.Predicate {
	var (
		ors []sql.Predicate
		eqs []sql.Predicate
	)
	for _, o := range orders {
		f, _ := m.Field(o.Field)
		col, v := s.C(f.Column), e.arg(f, cur[f.Name])
		ors = append(ors, sql.And(append(slices.Clip(eqs), e.after(col, v, o.Desc() != back))...))
		eqs = append(eqs, equal(col, v))
	}
	return sql.Or(append(ors, sql.And(eqs...))...)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// records selects every scalar column of m through s.
func (e *Engine) records(ctx context.Context, m *schema.Model, s *sql.Selector) ([]query.Record, error) {
	s.Select(columns(s, m)...)
	rows, err := e.rows(ctx, s)
	if err != nil {
		return nil, err
	}
	return scan(m, rows)
}

func (e *Engine) rows(ctx context.Context, s *sql.Selector) ([]map[string]any, error) {
	q, args := s.Query()
	rows := &sql.Rows{}
	if err := e.driver.Query(ctx, q, args, rows); err != nil {
		return nil, err
	}
	return sql.ScanMaps(rows)
}

// findOne returns the first raw record matching preds, or nil.
func (e *Engine) findOne(ctx context.Context, m *schema.Model, preds []query.Predicate) (query.Record, error) {
	st := e.stmt()
	s := st.table(m)
	if err := st.filter(m, s, preds); err != nil {
		return nil, err
	}
	recs, err := e.records(ctx, m, s.Limit(1))
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// find returns the raw records selected by q, in reading order.
func (e *Engine) find(ctx context.Context, m *schema.Model, q *query.Query) ([]query.Record, error) {
	if len(q.Distinct) > 0 {
		st := e.stmt()
		s := st.table(m)
		if err := st.filter(m, s, q.Where); err != nil {
			return nil, err
		}
		s.OrderBy(e.orderTerms(s, m, effectiveOrders(m, q.OrderBy), false)...)
		recs, err := e.records(ctx, m, s)
		if err != nil {
			return nil, err
		}
		return e.window(m, recs, q)
	}
	p := paginationOf(q)
	s, ok, err := e.page(ctx, e.stmt(), m, p)
	if err != nil || !ok {
		return []query.Record{}, err
	}
	recs, err := e.records(ctx, m, s)
	if err != nil {
		return nil, err
	}
	if p.backwards() {
		reverse(recs)
	}
	return recs, nil
}

// window applies the cursor, distinct, skip and take of q in memory to
// records sorted in the forward order of q.
func (e *Engine) window(m *schema.Model, recs []query.Record, q *query.Query) ([]query.Record, error) {
	if q == nil {
		return recs, nil
	}
	back := q.Take != nil && *q.Take < 0
	if q.Cursor != nil {
		f, ok := m.Field(q.Cursor.Field)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: unknown cursor field %s.%s", m.Name, q.Cursor.Field)
		}
		v, err := query.InputValue(f.Type, q.Cursor.Value)
		if err != nil {
			return nil, err
		}
		i := slices.IndexFunc(recs, func(r query.Record) bool { return sameValue(r[f.Name], v) })
		switch {
		case i < 0:
			return []query.Record{}, nil
		case back:
			recs = recs[:i+1]
		default:
			recs = recs[i:]
		}
	}
	recs = slices.Clone(recs)
	if back {
		reverse(recs)
	}
	if len(q.Distinct) > 0 {
		recs = distinct(recs, q.Distinct)
	}
	if q.Skip > 0 {
		recs = recs[min(q.Skip, len(recs)):]
	}
	if q.Take != nil && abs(*q.Take) < len(recs) {
		recs = recs[:abs(*q.Take)]
	}
	if back {
		reverse(recs)
	}
	if recs == nil {
		recs = []query.Record{}
	}
	return recs, nil
}

// distinct keeps the first record of every combination of fields.
func distinct(recs []query.Record, fields []string) []query.Record {
	seen := make(map[string]bool, len(recs))
	out := recs[:0]
	for _, r := range recs {
		var sb strings.Builder
		for _, f := range fields {
			fmt.Fprintf(&sb, "%T:%v|", r[f], r[f])
		}
		if k := sb.String(); !seen[k] {
			seen[k] = true
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) findMany(ctx context.Context, m *schema.Model, q *query.Query) ([]query.Record, error) {
	recs, err := e.find(ctx, m, q)
	if err != nil {
		return nil, err
	}
	return e.load(ctx, m, recs, q.Projection)
}

func (e *Engine) findFirst(ctx context.Context, m *schema.Model, q *query.Query) (query.Record, error) {
	first := *q
	if q.Take != nil && *q.Take < 0 {
		first.Take = query.Take(-1)
	} else {
		first.Take = query.Take(1)
	}
	recs, err := e.findMany(ctx, m, &first)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func (e *Engine) findUnique(ctx context.Context, m *schema.Model, args *query.UniqueArgs) (query.Record, error) {
	rec, err := e.findOne(ctx, m, args.Where.Predicates())
	if err != nil || rec == nil {
		return nil, err
	}
	recs, err := e.load(ctx, m, []query.Record{rec}, args.Projection)
	if err != nil {
		return nil, err
	}
	return recs[0], nil
}

// readIDs returns the records with the given ids ordered by id.
func (e *Engine) readIDs(ctx context.Context, m *schema.Model, keys []int64, p query.Projection) ([]query.Record, error) {
	recs, err := dataloader.Batch(ctx, keys, e.batchSize, func(ctx context.Context, chunk []int64) ([]query.Record, error) {
		s := e.stmt().table(m)
		s.Where(sql.In(s.C(m.ID.Column), anys(chunk)...))
		return e.records(ctx, m, s)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Int(m.ID.Name) < recs[j].Int(m.ID.Name) })
	return e.load(ctx, m, recs, p)
}

func (e *Engine) readID(ctx context.Context, m *schema.Model, id int64, p query.Projection) (query.Record, error) {
	recs, err := e.readIDs(ctx, m, []int64{id}, p)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// fields returns the scalar fields returned under projection p.
func (e *Engine) fields(m *schema.Model, p query.Projection) []string {
	if p.Select != nil {
		return p.Select.Fields
	}
	omitted := e.globalOmit[m.Name]
	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		if hide, ok := p.Omit[f.Name]; ok {
			if !hide {
				names = append(names, f.Name)
			}
			continue
		}
		if !omitted[f.Name] {
			names = append(names, f.Name)
		}
	}
	return names
}

// load attaches the relations and relation counts requested by p to the
// raw records recs, and projects their scalar fields. The result is
// aligned with recs.
func (e *Engine) load(ctx context.Context, m *schema.Model, recs []query.Record, p query.Projection) ([]query.Record, error) {
	if len(recs) == 0 {
		return []query.Record{}, nil
	}
	rels := p.Include
	if p.Select != nil {
		rels = p.Select.Relations
	}
	names := make([]string, 0, len(rels))
	for name := range rels {
		names = append(names, name)
	}
	sort.Strings(names)
	loaded := make([][]any, len(names)+len(p.Count))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i, name := range names {
		rel, ok := m.Relation(name)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: unknown relation %s.%s", m.Name, name)
		}
		g.Go(func() (err error) {
			loaded[i], err = e.loadRelation(gctx, rel, recs, rels[name])
			return err
		})
	}
	for i, name := range p.Count {
		rel, ok := m.Relation(name)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: unknown relation %s.%s", m.Name, name)
		}
		g.Go(func() (err error) {
			loaded[len(names)+i], err = e.countRelation(gctx, rel, recs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	fields := e.fields(m, p)
	out := make([]query.Record, len(recs))
	for i, r := range recs {
		o := make(query.Record, len(fields)+len(names)+1)
		for _, f := range fields {
			o[f] = r[f]
		}
		for j, name := range names {
			o[name] = loaded[j][i]
		}
		if len(p.Count) > 0 {
			counts := make(query.Record, len(p.Count))
			for j, name := range p.Count {
				counts[name] = loaded[len(names)+j][i]
			}
			o[query.CountKey] = counts
		}
		out[i] = o
	}
	return out, nil
}

// loadRelation loads rel for every parent. To-one relations yield a
// query.Record or a nil one, to-many relations a []query.Record.
func (e *Engine) loadRelation(ctx context.Context, rel *schema.Relation, parents []query.Record, q *query.Query) ([]any, error) {
	if q == nil {
		q = &query.Query{}
	}
	target := rel.Target
	out := make([]any, len(parents))
	if rel.Owner {
		var keys []int64
		for _, p := range parents {
			if fk, ok := p[rel.FK.Name].(int64); ok {
				keys = append(keys, fk)
			}
		}
		children, err := dataloader.Batch(ctx, dataloader.Unique(keys), e.batchSize, func(ctx context.Context, chunk []int64) ([]query.Record, error) {
			s := e.stmt().table(target)
			s.Where(sql.In(s.C(target.ID.Column), anys(chunk)...))
			return e.records(ctx, target, s)
		})
		if err != nil {
			return nil, err
		}
		projected, err := e.load(ctx, target, children, q.Projection)
		if err != nil {
			return nil, err
		}
		type keyed struct {
			id  int64
			rec query.Record
		}
		loaded := make([]keyed, len(children))
		for i, c := range children {
			loaded[i] = keyed{id: c.Int(target.ID.Name), rec: projected[i]}
		}
		fks := make([]int64, len(parents))
		for i, p := range parents {
			fks[i], _ = p[rel.FK.Name].(int64)
		}
		for i, k := range dataloader.OrderByKeysNoError(fks, loaded, func(k keyed) int64 { return k.id }) {
			out[i] = k.rec
		}
		return out, nil
	}
	orders := effectiveOrders(target, q.OrderBy)
	children, err := dataloader.Batch(ctx, dataloader.Unique(ids(parents)), e.batchSize, func(ctx context.Context, chunk []int64) ([]query.Record, error) {
		st := e.stmt()
		s := st.table(target)
		if err := st.filter(target, s, q.Where); err != nil {
			return nil, err
		}
		s.Where(sql.In(s.C(rel.FK.Column), anys(chunk)...))
		s.OrderBy(e.orderTerms(s, target, orders, false)...)
		return e.records(ctx, target, s)
	})
	if err != nil {
		return nil, err
	}
	groups := dataloader.GroupByKey(children, func(r query.Record) int64 { return r.Int(rel.FK.Name) })
	selected := dataloader.OrderGroupsByKeys(ids(parents), groups)
	var flat []query.Record
	for i, g := range selected {
		switch {
		case rel.ToMany():
			if g, err = e.window(target, g, q); err != nil {
				return nil, err
			}
		case len(g) > 1:
			g = g[:1]
		}
		selected[i] = g
		flat = append(flat, g...)
	}
	projected, err := e.load(ctx, target, flat, q.Projection)
	if err != nil {
		return nil, err
	}
	pos := 0
	for i, g := range selected {
		part := projected[pos : pos+len(g)]
		pos += len(g)
		switch {
		case rel.ToMany():
			out[i] = append([]query.Record{}, part...)
		case len(part) == 1:
			out[i] = part[0]
		default:
			out[i] = query.Record(nil)
		}
	}
	return out, nil
}

// countRelation counts the records of the to-many relation rel of every parent.
func (e *Engine) countRelation(ctx context.Context, rel *schema.Relation, parents []query.Record) ([]any, error) {
	type count struct {
		key int64
		n   int64
	}
	counts, err := dataloader.Batch(ctx, dataloader.Unique(ids(parents)), e.batchSize, func(ctx context.Context, chunk []int64) ([]count, error) {
		s := e.stmt().table(rel.Target)
		fk := s.C(rel.FK.Column)
		s.Select(fk, sql.As(sql.Count("*"), "cnt")).
			Where(sql.In(fk, anys(chunk)...)).
			GroupBy(fk)
		rows, err := e.rows(ctx, s)
		if err != nil {
			return nil, err
		}
		out := make([]count, 0, len(rows))
		for _, row := range rows {
			k, err := query.ScanValue(field.TypeInt, row[rel.FK.Column])
			if err != nil {
				return nil, err
			}
			n, err := query.ScanValue(field.TypeInt, row["cnt"])
			if err != nil {
				return nil, err
			}
			out = append(out, count{key: k.(int64), n: n.(int64)})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	byKey := make(map[int64]int64, len(counts))
	for _, c := range counts {
		byKey[c.key] = c.n
	}
	out := make([]any, len(parents))
	for i, p := range parents {
		out[i] = byKey[p.Int(schema.IDField)]
	}
	return out, nil
}
