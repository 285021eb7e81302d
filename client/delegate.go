package client

import (
	"github.com/repairtrack/repairdb/query"
)

// Delegate implements the operations shared by every model client.
// T is the entity type of the model.
type Delegate[T any] struct {
	rt    *runtime
	model string
	scan  func(*runtime, query.Record) *T
}

func newDelegate[T any](rt *runtime, model string, scan func(*runtime, query.Record) *T) *Delegate[T] {
	return &Delegate[T]{rt: rt, model: model, scan: scan}
}

// Model returns the model name.
func (d *Delegate[T]) Model() string { return d.model }

func (d *Delegate[T]) req(a query.Action, args any) query.Request {
	return query.Request{Model: d.model, Action: a, Args: args}
}

func (d *Delegate[T]) one(a query.Action, args any) *Op[*T] {
	return newOp(d.rt, d.req(a, args), decodeOne(d.scan))
}

func (d *Delegate[T]) many(a query.Action, args any) *Op[[]*T] {
	return newOp(d.rt, d.req(a, args), decodeMany(d.scan))
}

func (d *Delegate[T]) count(a query.Action, args any) *Op[int64] {
	return newOp(d.rt, d.req(a, args), decodeCount)
}

// FindUnique returns the record matching a unique field, or nil.
func (d *Delegate[T]) FindUnique(args query.UniqueArgs) *Op[*T] {
	return d.one(query.FindUnique, &args)
}

// FindUniqueOrThrow is like FindUnique but fails with P2025 when no record matches.
func (d *Delegate[T]) FindUniqueOrThrow(args query.UniqueArgs) *Op[*T] {
	return d.one(query.FindUniqueOrThrow, &args)
}

// FindFirst returns the first record matching q, or nil.
func (d *Delegate[T]) FindFirst(q query.Query) *Op[*T] {
	return d.one(query.FindFirst, &q)
}

// FindFirstOrThrow is like FindFirst but fails with P2025 when no record matches.
func (d *Delegate[T]) FindFirstOrThrow(q query.Query) *Op[*T] {
	return d.one(query.FindFirstOrThrow, &q)
}

// FindMany returns the records matching q.
func (d *Delegate[T]) FindMany(q query.Query) *Op[[]*T] {
	return d.many(query.FindMany, &q)
}

// Create inserts one record, with its nested writes.
func (d *Delegate[T]) Create(args query.CreateArgs) *Op[*T] {
	return d.one(query.CreateOne, &args)
}

// CreateMany inserts records and returns how many were inserted.
func (d *Delegate[T]) CreateMany(args query.CreateManyArgs) *Op[int64] {
	return d.count(query.CreateMany, &args)
}

// CreateManyAndReturn inserts records and returns them.
func (d *Delegate[T]) CreateManyAndReturn(args query.CreateManyArgs) *Op[[]*T] {
	return d.many(query.CreateManyAndReturn, &args)
}

// Update updates the record matching a unique field. It fails with
// P2025 when no record matches.
func (d *Delegate[T]) Update(args query.UpdateArgs) *Op[*T] {
	return d.one(query.UpdateOne, &args)
}

// UpdateMany updates the records matching a filter and returns how many
// were updated.
func (d *Delegate[T]) UpdateMany(args query.UpdateManyArgs) *Op[int64] {
	return d.count(query.UpdateMany, &args)
}

// UpdateManyAndReturn updates the records matching a filter and returns them.
func (d *Delegate[T]) UpdateManyAndReturn(args query.UpdateManyArgs) *Op[[]*T] {
	return d.many(query.UpdateManyAndReturn, &args)
}

// Upsert updates the record matching a unique field, or creates it.
func (d *Delegate[T]) Upsert(args query.UpsertArgs) *Op[*T] {
	return d.one(query.UpsertOne, &args)
}

// Delete deletes the record matching a unique field and returns it. It
// fails with P2025 when no record matches.
func (d *Delegate[T]) Delete(args query.DeleteArgs) *Op[*T] {
	return d.one(query.DeleteOne, &args)
}

// DeleteMany deletes the records matching a filter and returns how many
// were deleted.
func (d *Delegate[T]) DeleteMany(args query.DeleteManyArgs) *Op[int64] {
	return d.count(query.DeleteMany, &args)
}

// Count counts the records matching a filter.
func (d *Delegate[T]) Count(args query.CountArgs) *Op[int64] {
	return d.count(query.Count, &args)
}

// Aggregate summarizes the records matching a filter.
func (d *Delegate[T]) Aggregate(args query.AggregateArgs) *Op[*query.AggregateResult] {
	return newOp(d.rt, d.req(query.Aggregate, &args), decodeAggregate)
}

// GroupBy groups the records matching a filter and summarizes each group.
func (d *Delegate[T]) GroupBy(args query.GroupByArgs) *Op[[]query.AggregateResult] {
	return newOp(d.rt, d.req(query.GroupBy, &args), decodeGroups)
}
