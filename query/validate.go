package query

import (
	"fmt"
	"reflect"
	"slices"
	"unicode/utf8"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// Validate checks the shape of req against the model graph. It never
// contacts the database. The returned error is a *repairdb.ValidationError,
// or a *repairdb.AggregateError of them when several issues were found.
func Validate(g *schema.Graph, req Request) error {
	v := &validator{graph: g}
	v.request(req)
	if len(v.errs) == 0 {
		return nil
	}
	errs := make([]error, len(v.errs))
	for i, e := range v.errs {
		e.Model, e.Action = req.Model, string(req.Action)
		errs[i] = e
	}
	return repairdb.NewAggregateError(errs...)
}

type validator struct {
	graph *schema.Graph
	errs  []*repairdb.ValidationError
}

func (v *validator) errorf(path, format string, a ...any) {
	v.errs = append(v.errs, repairdb.Validationf(path, format, a...))
}

func (v *validator) request(req Request) {
	if req.Action == ExecuteRaw || req.Action == QueryRaw {
		return
	}
	if req.Action.Op() == 0 {
		v.errorf("", "unknown action %q", req.Action)
		return
	}
	m := v.graph.Model(req.Model)
	if m == nil {
		v.errorf("", "unknown model %q", req.Model)
		return
	}
	switch args := req.Args.(type) {
	case *UniqueArgs:
		v.want(req.Action, FindUnique, FindUniqueOrThrow)
		v.unique(m, args.Where, "where")
		v.projection(m, args.Projection, "")
	case *Query:
		v.want(req.Action, FindFirst, FindFirstOrThrow, FindMany)
		v.query(m, args, "")
	case *CreateArgs:
		v.want(req.Action, CreateOne)
		v.data(m, args.Data, dataCtx{path: "data", create: true})
		v.projection(m, args.Projection, "")
	case *CreateManyArgs:
		v.want(req.Action, CreateMany, CreateManyAndReturn)
		if len(args.Data) == 0 {
			v.errorf("data", "at least one record is required")
		}
		for i, d := range args.Data {
			v.data(m, d, dataCtx{path: fmt.Sprintf("data[%d]", i), create: true, flat: true})
		}
		v.returning(m, req.Action == CreateManyAndReturn, args.Projection)
	case *UpdateArgs:
		v.want(req.Action, UpdateOne)
		v.unique(m, args.Where, "where")
		v.data(m, args.Data, dataCtx{path: "data"})
		v.projection(m, args.Projection, "")
	case *UpdateManyArgs:
		v.want(req.Action, UpdateMany, UpdateManyAndReturn)
		v.where(m, args.Where, "where")
		v.data(m, args.Data, dataCtx{path: "data", flat: true})
		v.limit(args.Limit, "limit")
		v.returning(m, req.Action == UpdateManyAndReturn, args.Projection)
	case *UpsertArgs:
		v.want(req.Action, UpsertOne)
		v.unique(m, args.Where, "where")
		v.data(m, args.Create, dataCtx{path: "create", create: true})
		v.data(m, args.Update, dataCtx{path: "update"})
		v.projection(m, args.Projection, "")
	case *DeleteArgs:
		v.want(req.Action, DeleteOne)
		v.unique(m, args.Where, "where")
		v.projection(m, args.Projection, "")
	case *DeleteManyArgs:
		v.want(req.Action, DeleteMany)
		v.where(m, args.Where, "where")
		v.limit(args.Limit, "limit")
	case *CountArgs:
		v.want(req.Action, Count)
		v.where(m, args.Where, "where")
		v.orderBy(m, args.OrderBy, "orderBy")
		v.cursor(m, args.Cursor)
		v.skip(args.Skip)
	case *AggregateArgs:
		v.want(req.Action, Aggregate)
		v.where(m, args.Where, "where")
		v.orderBy(m, args.OrderBy, "orderBy")
		v.cursor(m, args.Cursor)
		v.skip(args.Skip)
		v.aggregates(m, args.Aggregates)
	case *GroupByArgs:
		v.want(req.Action, GroupBy)
		v.groupBy(m, args)
	default:
		v.errorf("", "unexpected arguments %T for %s", req.Args, req.Action)
	}
}

func (v *validator) want(a Action, allowed ...Action) {
	if !slices.Contains(allowed, a) {
		v.errorf("", "arguments do not match action %s", a)
	}
}

func (v *validator) returning(m *schema.Model, returns bool, p Projection) {
	if returns {
		v.projection(m, p, "")
		return
	}
	if p.Select != nil || len(p.Include) > 0 || len(p.Omit) > 0 || len(p.Count) > 0 {
		v.errorf("select", "projections are only supported by the AndReturn variant")
	}
}

func (v *validator) limit(n *int, path string) {
	if n != nil && *n < 0 {
		v.errorf(path, "must not be negative")
	}
}

func (v *validator) skip(n int) {
	if n < 0 {
		v.errorf("skip", "must not be negative")
	}
}

func (v *validator) query(m *schema.Model, q *Query, path string) {
	if q == nil {
		return
	}
	v.where(m, q.Where, join(path, "where"))
	v.orderBy(m, q.OrderBy, join(path, "orderBy"))
	if q.Cursor != nil {
		v.unique(m, *q.Cursor, join(path, "cursor"))
	}
	if q.Skip < 0 {
		v.errorf(join(path, "skip"), "must not be negative")
	}
	for _, name := range q.Distinct {
		if _, ok := m.Field(name); !ok {
			v.errorf(join(path, "distinct"), "unknown field %q of %s", name, m.Name)
		}
	}
	v.projection(m, q.Projection, path)
}

func (v *validator) cursor(m *schema.Model, c *Unique) {
	if c != nil {
		v.unique(m, *c, "cursor")
	}
}

func (v *validator) orderBy(m *schema.Model, orders []Order, path string) {
	for i, o := range orders {
		p := fmt.Sprintf("%s[%d]", path, i)
		if o.Aggregate != "" {
			v.errorf(p, "ordering by aggregates is only supported by groupBy")
			continue
		}
		v.direction(o, p)
		if _, ok := m.Field(o.Field); !ok {
			v.errorf(p, "unknown field %q of %s", o.Field, m.Name)
		}
	}
}

func (v *validator) direction(o Order, path string) {
	if o.Direction != "" && o.Direction != DirAsc && o.Direction != DirDesc {
		v.errorf(path, "invalid sort direction %q", o.Direction)
	}
}

func (v *validator) where(m *schema.Model, preds []Predicate, path string) {
	for i, p := range preds {
		v.predicate(m, p, fmt.Sprintf("%s[%d]", path, i))
	}
}

func (v *validator) predicate(m *schema.Model, p Predicate, path string) {
	switch {
	case p.Op == OpAnd || p.Op == OpOr || p.Op == OpNot:
		v.where(m, p.Preds, join(path, string(p.Op)))
	case p.IsRelation():
		rel, ok := m.Relation(p.Field)
		if !ok {
			v.errorf(path, "unknown relation %q of %s", p.Field, m.Name)
			return
		}
		switch p.Op {
		case OpSome, OpEvery, OpNone:
			if !rel.ToMany() {
				v.errorf(path, "%s is a to-one relation, use is or isNot", rel.Name)
			}
		default:
			if rel.ToMany() {
				v.errorf(path, "%s is a to-many relation, use some, every or none", rel.Name)
			}
		}
		v.where(rel.Target, p.Preds, join(path, p.Field+"."+string(p.Op)))
	default:
		if p.Aggregate != "" {
			v.errorf(path, "aggregates are only allowed in having")
			return
		}
		f, ok := m.Field(p.Field)
		if !ok {
			if _, isRel := m.Relation(p.Field); isRel {
				v.errorf(path, "%s is a relation, use a relation filter", p.Field)
				return
			}
			v.errorf(path, "unknown field %q of %s", p.Field, m.Name)
			return
		}
		v.leaf(f.Descriptor, p, join(path, p.Field))
	}
}

func (v *validator) leaf(f *field.Descriptor, p Predicate, path string) {
	if p.Mode != ModeDefault && p.Mode != ModeInsensitive {
		v.errorf(path, "unknown mode %q", p.Mode)
	}
	if p.Mode == ModeInsensitive && f.Type != field.TypeString {
		v.errorf(path, "mode insensitive requires a string field")
	}
	switch p.Op {
	case OpEQ, OpNEQ:
		if p.Value == nil {
			if !f.Optional {
				v.errorf(path, "%s is not nullable", f.Name)
			}
			return
		}
		v.value(f.Type, p.Value, path)
	case OpIn, OpNotIn:
		vs, ok := SliceValues(p.Value)
		if !ok {
			v.errorf(path, "%s expects a list, got %T", p.Op, p.Value)
			return
		}
		for _, e := range vs {
			v.value(f.Type, e, path)
		}
	case OpLT, OpLTE, OpGT, OpGTE:
		if !f.Type.Orderable() {
			v.errorf(path, "%s does not support %s", f.Type, p.Op)
			return
		}
		v.value(f.Type, p.Value, path)
	case OpContains, OpHasPrefix, OpHasSuffix:
		if f.Type != field.TypeString {
			v.errorf(path, "%s requires a string field", p.Op)
			return
		}
		v.value(f.Type, p.Value, path)
	case OpIsNull, OpNotNull:
		if !f.Optional {
			v.errorf(path, "%s is not nullable", f.Name)
		}
	default:
		v.errorf(path, "unknown operator %q", p.Op)
	}
}

func (v *validator) value(t field.Type, val any, path string) {
	if val == nil {
		v.errorf(path, "expected %s, got null", t)
		return
	}
	if _, err := InputValue(t, val); err != nil {
		v.errorf(path, "%v", err)
	}
}

func (v *validator) unique(m *schema.Model, u Unique, path string) {
	if u.Field == "" {
		v.errorf(path, "at least one unique field of %s is required", m.Name)
		return
	}
	f, ok := m.Field(u.Field)
	if !ok || !f.Unique {
		v.errorf(path, "%q is not a unique field of %s", u.Field, m.Name)
		return
	}
	v.value(f.Type, u.Value, join(path, u.Field))
	v.where(m, u.And, join(path, "AND"))
}

func (v *validator) projection(m *schema.Model, p Projection, path string) {
	if p.Select != nil && p.Include != nil {
		v.errorf(join(path, "select"), "choose select or include, not both")
	}
	if p.Select != nil && p.Omit != nil {
		v.errorf(join(path, "select"), "choose select or omit, not both")
	}
	if p.Select != nil {
		for _, name := range p.Select.Fields {
			if _, ok := m.Field(name); !ok {
				v.errorf(join(path, "select"), "unknown field %q of %s", name, m.Name)
			}
		}
		for name, q := range p.Select.Relations {
			v.relationQuery(m, name, q, join(path, "select."+name))
		}
	}
	for name, q := range p.Include {
		v.relationQuery(m, name, q, join(path, "include."+name))
	}
	for name := range p.Omit {
		if _, ok := m.Field(name); !ok {
			v.errorf(join(path, "omit"), "unknown field %q of %s", name, m.Name)
		}
	}
	for _, name := range p.Count {
		rel, ok := m.Relation(name)
		switch {
		case !ok:
			v.errorf(join(path, "_count"), "unknown relation %q of %s", name, m.Name)
		case !rel.ToMany():
			v.errorf(join(path, "_count"), "%s is not a to-many relation", name)
		}
	}
}

func (v *validator) relationQuery(m *schema.Model, name string, q *Query, path string) {
	rel, ok := m.Relation(name)
	if !ok {
		v.errorf(path, "unknown relation %q of %s", name, m.Name)
		return
	}
	if q == nil {
		return
	}
	if !rel.ToMany() {
		if len(q.Where) > 0 || len(q.OrderBy) > 0 || q.Cursor != nil || q.Take != nil || q.Skip != 0 || len(q.Distinct) > 0 {
			v.errorf(path, "to-one relation %s only accepts select, include and omit", name)
		}
		v.projection(rel.Target, q.Projection, path)
		return
	}
	v.query(rel.Target, q, path)
}

func (v *validator) aggregates(m *schema.Model, a Aggregates) {
	for _, name := range a.Count {
		if name == CountAll {
			continue
		}
		if _, ok := m.Field(name); !ok {
			v.errorf(AggCount, "unknown field %q of %s", name, m.Name)
		}
	}
	check := func(agg string, names []string, ok func(field.Type) bool) {
		for _, name := range names {
			f, found := m.Field(name)
			switch {
			case !found:
				v.errorf(agg, "unknown field %q of %s", name, m.Name)
			case !ok(f.Type):
				v.errorf(agg, "%s is not defined for %s field %q", agg, f.Type, name)
			}
		}
	}
	check(AggAvg, a.Avg, field.Type.Numeric)
	check(AggSum, a.Sum, field.Type.Numeric)
	check(AggMin, a.Min, field.Type.Orderable)
	check(AggMax, a.Max, field.Type.Orderable)
}

// aggregateOf validates a single aggregate expression used in having or orderBy.
func (v *validator) aggregateOf(m *schema.Model, agg, name, path string) bool {
	if agg == AggCount && name == CountAll {
		return true
	}
	f, ok := m.Field(name)
	if !ok {
		v.errorf(path, "unknown field %q of %s", name, m.Name)
		return false
	}
	switch agg {
	case AggCount:
	case AggAvg, AggSum:
		if !f.Type.Numeric() {
			v.errorf(path, "%s is not defined for %s field %q", agg, f.Type, name)
			return false
		}
	case AggMin, AggMax:
		if !f.Type.Orderable() {
			v.errorf(path, "%s is not defined for %s field %q", agg, f.Type, name)
			return false
		}
	default:
		v.errorf(path, "unknown aggregate %q", agg)
		return false
	}
	return true
}

func (v *validator) groupBy(m *schema.Model, args *GroupByArgs) {
	if len(args.By) == 0 {
		v.errorf("by", "by must contain at least one field")
	}
	by := make(map[string]bool, len(args.By))
	for _, name := range args.By {
		if _, ok := m.Field(name); !ok {
			v.errorf("by", "unknown field %q of %s", name, m.Name)
			continue
		}
		if by[name] {
			v.errorf("by", "duplicate field %q", name)
		}
		by[name] = true
	}
	v.where(m, args.Where, "where")
	for i, p := range args.Having {
		v.having(m, by, p, fmt.Sprintf("having[%d]", i))
	}
	for i, o := range args.OrderBy {
		path := fmt.Sprintf("orderBy[%d]", i)
		v.direction(o, path)
		if o.Aggregate != "" {
			v.aggregateOf(m, o.Aggregate, o.Field, path)
			continue
		}
		if !by[o.Field] {
			v.errorf(path, "every field used for orderBy must be included in by, %q is missing", o.Field)
		}
	}
	if (args.Take != nil || args.Skip != 0) && len(args.OrderBy) == 0 {
		v.errorf("orderBy", "take and skip require orderBy")
	}
	v.skip(args.Skip)
	v.aggregates(m, args.Aggregates)
}

func (v *validator) having(m *schema.Model, by map[string]bool, p Predicate, path string) {
	switch {
	case p.Op == OpAnd || p.Op == OpOr || p.Op == OpNot:
		for i, sub := range p.Preds {
			v.having(m, by, sub, fmt.Sprintf("%s.%s[%d]", path, p.Op, i))
		}
	case p.IsRelation():
		v.errorf(path, "relation filters are not allowed in having")
	case p.Aggregate != "":
		if !v.aggregateOf(m, p.Aggregate, p.Field, path) {
			return
		}
		switch p.Op {
		case OpEQ, OpNEQ, OpLT, OpLTE, OpGT, OpGTE:
		case OpIn, OpNotIn:
			if _, ok := SliceValues(p.Value); !ok {
				v.errorf(path, "%s expects a list, got %T", p.Op, p.Value)
			}
		default:
			v.errorf(path, "operator %s is not supported on aggregates", p.Op)
		}
	default:
		if !by[p.Field] {
			v.errorf(path, "field %q used in having must be included in by", p.Field)
			return
		}
		f, ok := m.Field(p.Field)
		if !ok {
			v.errorf(path, "unknown field %q of %s", p.Field, m.Name)
			return
		}
		v.leaf(f.Descriptor, p, join(path, p.Field))
	}
}

// dataCtx describes where a mutation payload appears.
type dataCtx struct {
	path   string
	create bool
	// flat forbids nested writes, as in createMany and updateMany.
	flat bool
	// parent is the relation from the created record back to the record
	// writing it. Its foreign key is implied and cannot be set.
	parent *schema.Relation
}

func (v *validator) data(m *schema.Model, d Data, c dataCtx) {
	if d == nil || reflect.ValueOf(d).IsNil() {
		v.errorf(c.path, "data is required")
		return
	}
	values := d.Values()
	for name, val := range values {
		path := join(c.path, name)
		if f, ok := m.Field(name); ok {
			v.fieldValue(f, d, val, c, path)
			continue
		}
		rel, ok := m.Relation(name)
		if !ok {
			v.errorf(path, "unknown argument %q of %s", name, m.Name)
			continue
		}
		switch {
		case c.parent != nil && rel == c.parent:
			v.errorf(path, "relation %q is implied by the parent record", name)
		case c.flat:
			v.errorf(path, "nested writes are not supported here")
		case d.Unchecked() && rel.Owner:
			v.errorf(path, "unchecked data cannot write relation %q, set %q instead", name, rel.FK.Name)
		default:
			n, ok := asNested(val)
			if !ok {
				v.errorf(path, "expected nested write, got %T", val)
				continue
			}
			v.nested(rel, n, c.create, path)
		}
	}
	if !c.create {
		return
	}
	for _, f := range m.Fields {
		if f == m.ID || f.Optional || f.Default != nil {
			continue
		}
		if c.parent != nil && f.Relation == c.parent {
			continue
		}
		if _, ok := values[f.Name]; ok {
			continue
		}
		if f.IsForeignKey() && !d.Unchecked() {
			if _, ok := values[f.Relation.Name]; ok {
				continue
			}
			v.errorf(join(c.path, f.Relation.Name), "argument %q is missing", f.Relation.Name)
			continue
		}
		v.errorf(join(c.path, f.Name), "argument %q is missing", f.Name)
	}
}

func (v *validator) fieldValue(f *schema.Scalar, d Data, val any, c dataCtx, path string) {
	switch {
	case c.parent != nil && f.Relation == c.parent:
		v.errorf(path, "field %q is implied by the parent record", f.Name)
		return
	case f.IsForeignKey() && !d.Unchecked():
		v.errorf(path, "checked data cannot set foreign key %q, use relation %q", f.Name, f.Relation.Name)
		return
	case f.Immutable && !c.create:
		v.errorf(path, "field %q is immutable", f.Name)
		return
	}
	if a, ok := asAtomic(val); ok {
		if c.create {
			v.errorf(path, "atomic operations are only allowed in updates")
			return
		}
		if a.Op != AtomicSet && !f.Type.Numeric() {
			v.errorf(path, "%s requires a numeric field", a.Op)
			return
		}
		switch a.Op {
		case AtomicSet, AtomicIncrement, AtomicDecrement, AtomicMultiply, AtomicDivide:
		default:
			v.errorf(path, "unknown atomic operation %q", a.Op)
			return
		}
		val = a.Value
	}
	if val == nil {
		if !f.Optional {
			v.errorf(path, "field %q must not be null", f.Name)
		}
		return
	}
	cv, err := InputValue(f.Type, val)
	if err != nil {
		v.errorf(path, "%v", err)
		return
	}
	if s, ok := cv.(string); ok && f.Size > 0 && utf8.RuneCountInString(s) > f.Size {
		v.errorf(path, "value exceeds %d characters", f.Size)
	}
}

func (v *validator) nested(rel *schema.Relation, n Nested, create bool, path string) {
	// The back-reference to the record being written is implied.
	child := dataCtx{create: true, parent: rel.Inverse}
	connects := len(n.Create) + len(n.Connect) + len(n.ConnectOrCreate)
	if !rel.ToMany() && connects > 1 {
		v.errorf(path, "to-one relation %s accepts a single create or connect", rel.Name)
	}
	if create && len(n.Update)+len(n.Upsert)+len(n.Delete) > 0 {
		v.errorf(path, "update, upsert and delete are not allowed when creating")
	}
	if !rel.ToMany() && (len(n.Update) > 1 || len(n.Upsert) > 1 || len(n.Delete) > 1) {
		v.errorf(path, "to-one relation %s accepts a single update, upsert or delete", rel.Name)
	}
	if rel.Owner && len(n.Delete) > 0 {
		v.errorf(join(path, "delete"), "required relation %s cannot be deleted", rel.Name)
	}
	for i, d := range n.Create {
		child.path = fmt.Sprintf("%s.create[%d]", path, i)
		v.data(rel.Target, d, child)
	}
	for i, u := range n.Connect {
		v.unique(rel.Target, u, fmt.Sprintf("%s.connect[%d]", path, i))
	}
	for i, co := range n.ConnectOrCreate {
		p := fmt.Sprintf("%s.connectOrCreate[%d]", path, i)
		v.unique(rel.Target, co.Where, join(p, "where"))
		child.path = join(p, "create")
		v.data(rel.Target, co.Create, child)
	}
	upd := dataCtx{parent: child.parent}
	for i, u := range n.Update {
		p := fmt.Sprintf("%s.update[%d]", path, i)
		v.nestedWhere(rel, u.Where, join(p, "where"))
		upd.path = join(p, "data")
		v.data(rel.Target, u.Data, upd)
	}
	for i, u := range n.Upsert {
		p := fmt.Sprintf("%s.upsert[%d]", path, i)
		v.nestedWhere(rel, u.Where, join(p, "where"))
		child.path = join(p, "create")
		v.data(rel.Target, u.Create, child)
		upd.path = join(p, "update")
		v.data(rel.Target, u.Update, upd)
	}
	for i, u := range n.Delete {
		v.nestedWhere(rel, u, fmt.Sprintf("%s.delete[%d]", path, i))
	}
}

func (v *validator) nestedWhere(rel *schema.Relation, u Unique, path string) {
	if !rel.ToMany() {
		if !u.IsZero() {
			v.errorf(path, "to-one relation %s does not accept where", rel.Name)
		}
		return
	}
	v.unique(rel.Target, u, path)
}

func asNested(v any) (Nested, bool) {
	switch n := v.(type) {
	case Nested:
		return n, true
	case *Nested:
		if n != nil {
			return *n, true
		}
	}
	return Nested{}, false
}

func asAtomic(v any) (Atomic, bool) {
	switch a := v.(type) {
	case Atomic:
		return a, true
	case *Atomic:
		if a != nil {
			return *a, true
		}
	}
	return Atomic{}, false
}

// AsNested reports whether v is a nested write.
func AsNested(v any) (Nested, bool) { return asNested(v) }

// AsAtomic reports whether v is an atomic update.
func AsAtomic(v any) (Atomic, bool) { return asAtomic(v) }

// SliceValues returns the elements of a slice value.
func SliceValues(v any) ([]any, bool) {
	if vs, ok := v.([]any); ok {
		return vs, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func join(path, elem string) string {
	if path == "" {
		return elem
	}
	return path + "." + elem
}
