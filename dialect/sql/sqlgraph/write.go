package sqlgraph

import (
	"context"
	"fmt"
	"time"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/contrib/dataloader"
	"github.com/repairtrack/repairdb/dialect"
	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// payload is a mutation payload split into canonical scalar values, or
// query.Atomic updates, and nested relation writes.
type payload struct {
	values map[*schema.Scalar]any
	nested map[*schema.Relation]query.Nested
}

func split(m *schema.Model, d query.Data) (payload, error) {
	p := payload{
		values: make(map[*schema.Scalar]any),
		nested: make(map[*schema.Relation]query.Nested),
	}
	if d == nil {
		return p, nil
	}
	for name, v := range d.Values() {
		if f, ok := m.Field(name); ok {
			if a, ok := query.AsAtomic(v); ok {
				cv, err := query.InputValue(f.Type, a.Value)
				if err != nil {
					return p, repairdb.Validationf(name, "%v", err)
				}
				p.values[f] = query.Atomic{Op: a.Op, Value: cv}
				continue
			}
			cv, err := query.InputValue(f.Type, v)
			if err != nil {
				return p, repairdb.Validationf(name, "%v", err)
			}
			p.values[f] = cv
			continue
		}
		rel, ok := m.Relation(name)
		if !ok {
			return p, repairdb.Validationf(name, "unknown field %q on %s", name, m.Name)
		}
		n, ok := query.AsNested(v)
		if !ok {
			return p, repairdb.Validationf(name, "expected a nested write, got %T", v)
		}
		p.nested[rel] = n
	}
	return p, nil
}

// link is the foreign key value set on records created under a parent.
type link struct {
	fk *schema.Scalar
	id int64
}

func nestedNotFound(rel *schema.Relation, op string) error {
	err := repairdb.NewNotFoundError(rel.Target.Name, op)
	err.Message = fmt.Sprintf("no %s record was found for a nested %s on relation %s.%s", rel.Target.Name, op, rel.Model.Name, rel.Name)
	return err
}

func (e *Engine) create(ctx context.Context, m *schema.Model, args *query.CreateArgs) (rec query.Record, err error) {
	err = e.withTx(ctx, func(tx *Engine) error {
		id, err := tx.createRecord(ctx, m, args.Data, nil)
		if err != nil {
			return err
		}
		rec, err = tx.readID(ctx, m, id, args.Projection)
		return err
	})
	return rec, err
}

// createRecord inserts a record of m with its nested writes and returns its id.
func (e *Engine) createRecord(ctx context.Context, m *schema.Model, d query.Data, parent *link) (int64, error) {
	p, err := split(m, d)
	if err != nil {
		return 0, err
	}
	values := make(map[*schema.Scalar]any, len(m.Fields))
	for f, v := range p.values {
		values[f] = v
	}
	if parent != nil {
		values[parent.fk] = parent.id
	}
	for _, rel := range m.Relations {
		n, ok := p.nested[rel]
		if !ok || !rel.Owner {
			continue
		}
		id, err := e.connectOwner(ctx, rel, n)
		if err != nil {
			return 0, err
		}
		values[rel.FK] = id
	}
	withDefaults(m, values)
	if err := notBefore(m, values); err != nil {
		return 0, err
	}
	id, _, err := e.insert(ctx, m, values, false)
	if err != nil {
		return 0, err
	}
	e.mutated(m)
	for _, rel := range m.Relations {
		if n, ok := p.nested[rel]; ok && !rel.Owner {
			if err := e.nestedChildren(ctx, rel, id, n); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

func withDefaults(m *schema.Model, values map[*schema.Scalar]any) {
	for _, f := range m.Fields {
		if _, ok := values[f]; !ok && f.Default != nil {
			values[f] = f.Default()
		}
	}
}

// notBefore checks the time ordering constraints of m against values.
func notBefore(m *schema.Model, values map[*schema.Scalar]any) error {
	for _, f := range m.Fields {
		if f.NotBefore == "" {
			continue
		}
		other, _ := m.Field(f.NotBefore)
		a, ok1 := values[f].(time.Time)
		b, ok2 := values[other].(time.Time)
		if ok1 && ok2 && a.Before(b) {
			return repairdb.Validationf(f.Name, "%s must not be before %s", f.Name, other.Name)
		}
	}
	return nil
}

// connectOwner resolves the nested write on an owned relation into the id
// stored in its foreign key.
func (e *Engine) connectOwner(ctx context.Context, rel *schema.Relation, n query.Nested) (int64, error) {
	switch {
	case len(n.Create) > 0:
		return e.createRecord(ctx, rel.Target, n.Create[0], nil)
	case len(n.Connect) > 0:
		id, ok, err := e.lookup(ctx, rel.Target, n.Connect[0], nil)
		if err == nil && !ok {
			err = nestedNotFound(rel, "connect")
		}
		return id, err
	case len(n.ConnectOrCreate) > 0:
		co := n.ConnectOrCreate[0]
		id, ok, err := e.lookup(ctx, rel.Target, co.Where, nil)
		if err != nil || ok {
			return id, err
		}
		return e.createRecord(ctx, rel.Target, co.Create, nil)
	}
	return 0, fmt.Errorf("sqlgraph: no record to link on relation %s", rel)
}

// nestedChildren applies the nested writes on a relation whose foreign
// key lives on the related records.
func (e *Engine) nestedChildren(ctx context.Context, rel *schema.Relation, parentID int64, n query.Nested) error {
	target, child := rel.Target, &link{fk: rel.FK, id: parentID}
	own := func(s *sql.Selector) sql.Predicate { return sql.EQ(s.C(rel.FK.Column), parentID) }
	for _, d := range n.Create {
		if _, err := e.createRecord(ctx, target, d, child); err != nil {
			return err
		}
	}
	for _, u := range n.Connect {
		id, ok, err := e.lookup(ctx, target, u, nil)
		if err != nil {
			return err
		}
		if !ok {
			return nestedNotFound(rel, "connect")
		}
		if err := e.relink(ctx, rel, id, parentID); err != nil {
			return err
		}
	}
	for _, co := range n.ConnectOrCreate {
		id, ok, err := e.lookup(ctx, target, co.Where, nil)
		switch {
		case err != nil:
			return err
		case ok:
			err = e.relink(ctx, rel, id, parentID)
		default:
			_, err = e.createRecord(ctx, target, co.Create, child)
		}
		if err != nil {
			return err
		}
	}
	for _, u := range n.Update {
		id, ok, err := e.lookup(ctx, target, u.Where, own)
		if err != nil {
			return err
		}
		if !ok {
			return nestedNotFound(rel, "update")
		}
		if err := e.updateRecord(ctx, target, id, u.Data); err != nil {
			return err
		}
	}
	for _, u := range n.Upsert {
		id, ok, err := e.lookup(ctx, target, u.Where, own)
		switch {
		case err != nil:
			return err
		case ok:
			err = e.updateRecord(ctx, target, id, u.Update)
		default:
			_, err = e.createRecord(ctx, target, u.Create, child)
		}
		if err != nil {
			return err
		}
	}
	for _, u := range n.Delete {
		id, ok, err := e.lookup(ctx, target, u, own)
		if err != nil {
			return err
		}
		if !ok {
			return nestedNotFound(rel, "delete")
		}
		if _, err := e.deleteIDs(ctx, target, []int64{id}); err != nil {
			return err
		}
	}
	return nil
}

// relink points the foreign key of the record id of rel.Target at parentID.
func (e *Engine) relink(ctx context.Context, rel *schema.Relation, id, parentID int64) error {
	u := sql.Dialect(e.dialect).Update(rel.Target.Table).
		Set(rel.FK.Column, parentID).
		Where(sql.EQ(rel.Target.ID.Column, id))
	if err := e.exec(ctx, u, nil); err != nil {
		return err
	}
	e.mutated(rel.Target)
	return nil
}

// querier is implemented by the statement builders.
type querier interface {
	Query() (string, []any)
}

func (e *Engine) exec(ctx context.Context, b querier, res *sql.Result) error {
	q, args := b.Query()
	var v any
	if res != nil {
		v = res
	}
	return e.driver.Exec(ctx, q, args, v)
}

// insert inserts one row. The boolean is false when the row was skipped
// as a duplicate.
func (e *Engine) insert(ctx context.Context, m *schema.Model, values map[*schema.Scalar]any, skipDuplicates bool) (int64, bool, error) {
	var (
		cols []string
		args []any
	)
	for _, f := range m.Fields {
		if v, ok := values[f]; ok {
			cols = append(cols, f.Column)
			args = append(args, e.arg(f, v))
		}
	}
	ins := sql.Dialect(e.dialect).Insert(m.Table).Columns(cols...).Values(args...)
	if skipDuplicates {
		ins.OnConflictDoNothing()
	}
	if e.dialect == dialect.Postgres {
		q, qargs := ins.Returning(m.ID.Column).Query()
		rows := &sql.Rows{}
		if err := e.driver.Query(ctx, q, qargs, rows); err != nil {
			return 0, false, err
		}
		maps, err := sql.ScanMaps(rows)
		if err != nil || len(maps) == 0 {
			return 0, false, err
		}
		id, err := query.ScanValue(field.TypeInt, maps[0][m.ID.Column])
		if err != nil {
			return 0, false, err
		}
		return id.(int64), true, nil
	}
	var res sql.Result
	if err := e.exec(ctx, ins, &res); err != nil {
		return 0, false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return 0, false, err
	}
	if id, ok := values[m.ID].(int64); ok {
		return id, true, nil
	}
	id, err := res.LastInsertId()
	return id, err == nil, err
}

// lookup returns the id of the record of m identified by u. extra further
// restricts the match.
func (e *Engine) lookup(ctx context.Context, m *schema.Model, u query.Unique, extra func(*sql.Selector) sql.Predicate) (int64, bool, error) {
	st := e.stmt()
	s := st.table(m)
	if err := st.filter(m, s, u.Predicates()); err != nil {
		return 0, false, err
	}
	if extra != nil {
		s.Where(extra(s))
	}
	rows, err := e.rows(ctx, s.Select(s.C(m.ID.Column)).Limit(1))
	if err != nil || len(rows) == 0 {
		return 0, false, err
	}
	id, err := query.ScanValue(field.TypeInt, rows[0][m.ID.Column])
	if err != nil {
		return 0, false, err
	}
	return id.(int64), true, nil
}

// selectIDs returns the ids of the records matching where, in id order.
func (e *Engine) selectIDs(ctx context.Context, m *schema.Model, where []query.Predicate, limit *int) ([]int64, error) {
	st := e.stmt()
	s := st.table(m)
	if err := st.filter(m, s, where); err != nil {
		return nil, err
	}
	s.Select(s.C(m.ID.Column)).OrderBy(sql.Asc(s.C(m.ID.Column)))
	if limit != nil {
		s.Limit(*limit)
	}
	rows, err := e.rows(ctx, s)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(rows))
	for i, row := range rows {
		id, err := query.ScanValue(field.TypeInt, row[m.ID.Column])
		if err != nil {
			return nil, err
		}
		out[i] = id.(int64)
	}
	return out, nil
}

// assign adds the update of field f with the canonical value or atomic v.
func (e *Engine) assign(u *sql.UpdateBuilder, f *schema.Scalar, v any) {
	a, ok := v.(query.Atomic)
	if !ok {
		a = query.Set(v)
	}
	if a.Value == nil {
		u.SetNull(f.Column)
		return
	}
	arg := e.arg(f, a.Value)
	switch a.Op {
	case query.AtomicIncrement:
		u.Add(f.Column, arg)
	case query.AtomicDecrement:
		u.Sub(f.Column, arg)
	case query.AtomicMultiply:
		u.Mul(f.Column, arg)
	case query.AtomicDivide:
		u.Div(f.Column, arg, f.Type == field.TypeInt)
	default:
		u.Set(f.Column, arg)
	}
}

// assignments returns a function adding the scalar updates of p and the
// update defaults of m to an UPDATE statement. set records the assigned
// fields.
func (e *Engine) assignments(m *schema.Model, p payload, set map[*schema.Scalar]bool) func(*sql.UpdateBuilder) {
	type pair struct {
		f *schema.Scalar
		v any
	}
	var pairs []pair
	for _, f := range m.Fields {
		if v, ok := p.values[f]; ok {
			pairs = append(pairs, pair{f, v})
			set[f] = true
		}
	}
	for _, f := range m.Fields {
		if f.UpdateDefault != nil && !set[f] {
			pairs = append(pairs, pair{f, f.UpdateDefault()})
			set[f] = true
		}
	}
	return func(u *sql.UpdateBuilder) {
		for _, p := range pairs {
			e.assign(u, p.f, p.v)
		}
	}
}

func (e *Engine) update(ctx context.Context, m *schema.Model, args *query.UpdateArgs) (rec query.Record, err error) {
	err = e.withTx(ctx, func(tx *Engine) error {
		id, ok, err := tx.lookup(ctx, m, args.Where, nil)
		if err != nil {
			return err
		}
		if !ok {
			return repairdb.NewNotFoundError(m.Name, string(query.UpdateOne))
		}
		if err := tx.updateRecord(ctx, m, id, args.Data); err != nil {
			return err
		}
		rec, err = tx.readID(ctx, m, id, args.Projection)
		return err
	})
	return rec, err
}

// updateRecord applies d to the existing record id of m.
func (e *Engine) updateRecord(ctx context.Context, m *schema.Model, id int64, d query.Data) error {
	p, err := split(m, d)
	if err != nil {
		return err
	}
	set := make(map[*schema.Scalar]bool)
	u := sql.Dialect(e.dialect).Update(m.Table)
	var current query.Record
	for _, rel := range m.Relations {
		n, ok := p.nested[rel]
		if !ok || !rel.Owner {
			continue
		}
		if len(n.Create)+len(n.Connect)+len(n.ConnectOrCreate) > 0 {
			tid, err := e.connectOwner(ctx, rel, n)
			if err != nil {
				return err
			}
			u.Set(rel.FK.Column, tid)
			set[rel.FK] = true
		}
		if len(n.Update) == 0 && len(n.Upsert) == 0 {
			continue
		}
		if current == nil {
			if current, err = e.findOne(ctx, m, []query.Predicate{query.FieldEQ(m.ID.Name, id)}); err != nil {
				return err
			}
		}
		fk, linked := current[rel.FK.Name].(int64)
		for _, nu := range n.Update {
			if !linked {
				return nestedNotFound(rel, "update")
			}
			if err := e.updateRecord(ctx, rel.Target, fk, nu.Data); err != nil {
				return err
			}
		}
		for _, nu := range n.Upsert {
			if linked {
				err = e.updateRecord(ctx, rel.Target, fk, nu.Update)
			} else if fk, err = e.createRecord(ctx, rel.Target, nu.Create, nil); err == nil {
				u.Set(rel.FK.Column, fk)
				set[rel.FK], linked = true, true
			}
			if err != nil {
				return err
			}
		}
	}
	e.assignments(m, p, set)(u)
	if !u.Empty() {
		if err := e.exec(ctx, u.Where(sql.EQ(m.ID.Column, id)), nil); err != nil {
			return err
		}
		e.mutated(m)
	}
	for _, rel := range m.Relations {
		if n, ok := p.nested[rel]; ok && !rel.Owner {
			if err := e.nestedChildren(ctx, rel, id, n); err != nil {
				return err
			}
		}
	}
	return e.checkNotBefore(ctx, m, set, []int64{id})
}

// checkNotBefore verifies the time ordering constraints of m involving
// the fields in set on the stored records ids.
func (e *Engine) checkNotBefore(ctx context.Context, m *schema.Model, set map[*schema.Scalar]bool, keys []int64) error {
	for _, f := range m.Fields {
		if f.NotBefore == "" {
			continue
		}
		other, _ := m.Field(f.NotBefore)
		if !set[f] && !set[other] {
			continue
		}
		for _, chunk := range dataloader.Chunk(keys, e.batchSize) {
			s := e.stmt().table(m)
			before := func(b *sql.Builder) {
				b.Ident(s.C(f.Column)).WriteString(" < ").Ident(s.C(other.Column))
			}
			s.Select(s.C(m.ID.Column)).
				Where(sql.In(s.C(m.ID.Column), anys(chunk)...)).
				Where(before).
				Limit(1)
			rows, err := e.rows(ctx, s)
			if err != nil {
				return err
			}
			if len(rows) > 0 {
				return repairdb.Validationf(f.Name, "%s must not be before %s", f.Name, other.Name)
			}
		}
	}
	return nil
}

func (e *Engine) updateMany(ctx context.Context, m *schema.Model, args *query.UpdateManyArgs, returning bool) (*query.Response, error) {
	resp := &query.Response{}
	err := e.withTx(ctx, func(tx *Engine) error {
		keys, err := tx.selectIDs(ctx, m, args.Where, args.Limit)
		if err != nil {
			return err
		}
		p, err := split(m, args.Data)
		if err != nil {
			return err
		}
		set := make(map[*schema.Scalar]bool)
		apply := tx.assignments(m, p, set)
		for _, chunk := range dataloader.Chunk(keys, tx.batchSize) {
			u := sql.Dialect(tx.dialect).Update(m.Table)
			if apply(u); u.Empty() {
				break
			}
			if err := tx.exec(ctx, u.Where(sql.In(m.ID.Column, anys(chunk)...)), nil); err != nil {
				return err
			}
			tx.mutated(m)
		}
		if err := tx.checkNotBefore(ctx, m, set, keys); err != nil {
			return err
		}
		resp.Count = int64(len(keys))
		if returning {
			resp.Records, err = tx.readIDs(ctx, m, keys, args.Projection)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (e *Engine) createMany(ctx context.Context, m *schema.Model, args *query.CreateManyArgs, returning bool) (*query.Response, error) {
	resp := &query.Response{}
	err := e.withTx(ctx, func(tx *Engine) error {
		var keys []int64
		for _, d := range args.Data {
			p, err := split(m, d)
			if err != nil {
				return err
			}
			withDefaults(m, p.values)
			if err := notBefore(m, p.values); err != nil {
				return err
			}
			id, ok, err := tx.insert(ctx, m, p.values, args.SkipDuplicates)
			if err != nil {
				return err
			}
			if ok {
				keys = append(keys, id)
			}
		}
		if len(keys) > 0 {
			tx.mutated(m)
		}
		resp.Count = int64(len(keys))
		if returning {
			var err error
			resp.Records, err = tx.readIDs(ctx, m, keys, args.Projection)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (e *Engine) upsert(ctx context.Context, m *schema.Model, args *query.UpsertArgs) (rec query.Record, err error) {
	for attempt := 0; ; attempt++ {
		var created bool
		err = e.withTx(ctx, func(tx *Engine) error {
			id, ok, err := tx.lookup(ctx, m, args.Where, nil)
			switch {
			case err != nil:
				return err
			case ok:
				err = tx.updateRecord(ctx, m, id, args.Update)
			default:
				created = true
				id, err = tx.createRecord(ctx, m, args.Create, nil)
			}
			if err != nil {
				return err
			}
			rec, err = tx.readID(ctx, m, id, args.Projection)
			return err
		})
		// A concurrent writer inserted the record after the lookup
		// missed. Run again to update it, unless the caller owns the
		// transaction, which the failed insert has spoiled.
		if err == nil || !created || attempt > 0 || e.tx != nil || !IsUniqueConstraintError(err) {
			return rec, err
		}
	}
}

func (e *Engine) delete(ctx context.Context, m *schema.Model, args *query.DeleteArgs) (rec query.Record, err error) {
	err = e.withTx(ctx, func(tx *Engine) error {
		id, ok, err := tx.lookup(ctx, m, args.Where, nil)
		if err != nil {
			return err
		}
		if !ok {
			return repairdb.NewNotFoundError(m.Name, string(query.DeleteOne))
		}
		if rec, err = tx.readID(ctx, m, id, args.Projection); err != nil {
			return err
		}
		_, err = tx.deleteIDs(ctx, m, []int64{id})
		return err
	})
	return rec, err
}

func (e *Engine) deleteMany(ctx context.Context, m *schema.Model, args *query.DeleteManyArgs) (n int64, err error) {
	err = e.withTx(ctx, func(tx *Engine) error {
		keys, err := tx.selectIDs(ctx, m, args.Where, args.Limit)
		if err != nil {
			return err
		}
		n, err = tx.deleteIDs(ctx, m, keys)
		return err
	})
	return n, err
}

// deleteIDs deletes the records of m with the given ids.
func (e *Engine) deleteIDs(ctx context.Context, m *schema.Model, keys []int64) (int64, error) {
	var n int64
	for _, chunk := range dataloader.Chunk(keys, e.batchSize) {
		var res sql.Result
		d := sql.Dialect(e.dialect).Delete(m.Table).Where(sql.In(m.ID.Column, anys(chunk)...))
		if err := e.exec(ctx, d, &res); err != nil {
			return 0, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		n += affected
	}
	if n > 0 {
		e.mutated(m)
	}
	return n, nil
}
