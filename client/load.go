package client

import (
	"slices"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/schema"
)

// recordKey identifies the entity a lazy loader starts from.
type recordKey struct {
	id int64
	// fk is the foreign key of an owned relation. nil when it is null.
	fk *int64
	// read holds the scalars the entity was read with. nil means all.
	read map[string]bool
}

func (k recordKey) has(field string) bool {
	return k.read == nil || k.read[field]
}

// readFields returns the scalars present in rec.
func readFields(rec query.Record) map[string]bool {
	read := make(map[string]bool, len(rec))
	for k := range rec {
		read[k] = true
	}
	return read
}

// relationFilter returns the target of relation name of model and the
// predicate selecting the records related to k. Owned relations match
// on the foreign key, or through the inverse relation when the foreign
// key was not read.
func relationFilter(g *schema.Graph, model, name string, k recordKey) (string, query.Predicate, error) {
	rel, ok := g.Model(model).Relation(name)
	if !ok {
		panic("client: unknown relation " + model + "." + name)
	}
	target := rel.Target.Name
	switch {
	case rel.Owner && k.has(rel.FK.Name):
		var key int64
		if k.fk != nil {
			key = *k.fk
		}
		return target, query.FieldEQ(schema.IDField, key), nil
	case !k.has(schema.IDField):
		return target, query.FieldEQ(schema.IDField, int64(0)), repairdb.NewNotLoadedError(name)
	case rel.Owner:
		inv := query.RelationField(rel.Inverse.Name)
		byID := query.FieldEQ(schema.IDField, k.id)
		if rel.Inverse.ToMany() {
			return target, inv.Some(byID), nil
		}
		return target, inv.Is(byID), nil
	}
	return target, query.FieldEQ(rel.FK.Name, k.id), nil
}

// queryOne loads a to-one relation lazily.
func queryOne[T any](rt *runtime, model, name string, k recordKey, scan func(*runtime, query.Record) *T) *Op[*T] {
	target, pred, err := relationFilter(rt.graph, model, name, k)
	q := &query.Query{Where: []query.Predicate{pred}}
	op := newOp(rt, query.Request{Model: target, Action: query.FindFirst, Args: q}, decodeOne(scan))
	if err != nil {
		op.err = err
	}
	return op
}

// queryMany loads a to-many relation lazily. q may narrow, order and
// paginate the related records.
func queryMany[T any](rt *runtime, model, name string, k recordKey, q query.Query, scan func(*runtime, query.Record) *T) *Op[[]*T] {
	target, pred, err := relationFilter(rt.graph, model, name, k)
	q.Where = append(slices.Clone(q.Where), pred)
	op := newOp(rt, query.Request{Model: target, Action: query.FindMany, Args: &q}, decodeMany(scan))
	if err != nil {
		op.err = err
	}
	return op
}

// counts returns the relation counts of a record, or nil.
func counts(rec query.Record) map[string]int64 {
	c := rec.Counts()
	if c == nil {
		return nil
	}
	out := make(map[string]int64, len(c))
	for k := range c {
		out[k] = c.Int(k)
	}
	return out
}

// scanAll converts loaded related records.
func scanAll[T any](rt *runtime, recs []query.Record, scan func(*runtime, query.Record) *T) []*T {
	out := make([]*T, len(recs))
	for i, r := range recs {
		out[i] = scan(rt, r)
	}
	return out
}
