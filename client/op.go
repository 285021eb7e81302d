package client

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/query"
)

// Runnable is a deferred operation that can join a batch transaction.
// It is implemented by *Op values only.
type Runnable interface {
	// Request returns the structured request the operation dispatches.
	Request() query.Request
	// Err returns the validation error detected at construction.
	Err() error
	run(context.Context, *runtime) (any, error)
}

// Op is a deferred operation. Nothing reaches the database until Exec,
// or until it is passed to Client.Transaction. Request shape errors are
// detected when the Op is built and reported by Err and Exec.
type Op[T any] struct {
	rt     *runtime
	req    query.Request
	err    error
	decode func(*runtime, *query.Response) (T, error)
}

func newOp[T any](rt *runtime, req query.Request, decode func(*runtime, *query.Response) (T, error)) *Op[T] {
	return &Op[T]{
		rt:     rt,
		req:    req,
		err:    query.Validate(rt.graph, req),
		decode: decode,
	}
}

// Request returns the structured request of the operation.
func (o *Op[T]) Request() query.Request { return o.req }

// Err returns the validation error of the request, if any.
func (o *Op[T]) Err() error {
	return o.rt.format.format(o.req.String(), o.err)
}

// Exec dispatches the operation.
func (o *Op[T]) Exec(ctx context.Context) (T, error) {
	v, err := o.exec(ctx, o.rt)
	return v, o.rt.format.format(o.req.String(), err)
}

func (o *Op[T]) exec(ctx context.Context, rt *runtime) (T, error) {
	var zero T
	if o.err != nil {
		return zero, o.err
	}
	resp, err := rt.dispatch(ctx, o.req)
	if err != nil {
		return zero, err
	}
	return o.decode(rt, resp)
}

func (o *Op[T]) run(ctx context.Context, rt *runtime) (any, error) {
	return o.exec(ctx, rt)
}

// dispatch runs the privacy policies of the model, then hands the
// request to the engine.
func (rt *runtime) dispatch(ctx context.Context, req query.Request) (resp *query.Response, err error) {
	target := req.String()
	defer func() {
		if v := recover(); v != nil {
			err = &repairdb.PanicError{Value: v, Stack: debug.Stack()}
		}
		if err != nil {
			rt.events.emit(ctx, Event{Type: EventError, Target: target, Message: err.Error()})
		}
	}()
	if req.Model != "" {
		if req, err = rt.authorize(ctx, req); err != nil {
			return nil, err
		}
	}
	return rt.engine.Execute(ctx, req)
}

func decodeOne[T any](scan func(*runtime, query.Record) *T) func(*runtime, *query.Response) (*T, error) {
	return func(rt *runtime, resp *query.Response) (*T, error) {
		if resp.Record == nil {
			return nil, nil
		}
		return scan(rt, resp.Record), nil
	}
}

func decodeMany[T any](scan func(*runtime, query.Record) *T) func(*runtime, *query.Response) ([]*T, error) {
	return func(rt *runtime, resp *query.Response) ([]*T, error) {
		out := make([]*T, len(resp.Records))
		for i, r := range resp.Records {
			out[i] = scan(rt, r)
		}
		return out, nil
	}
}

func decodeCount(_ *runtime, resp *query.Response) (int64, error) { return resp.Count, nil }

func decodeAggregate(_ *runtime, resp *query.Response) (*query.AggregateResult, error) {
	if resp.Aggregate == nil {
		return nil, fmt.Errorf("client: engine returned no aggregate")
	}
	return resp.Aggregate, nil
}

func decodeGroups(_ *runtime, resp *query.Response) ([]query.AggregateResult, error) {
	return resp.Groups, nil
}

func decodeRecords(_ *runtime, resp *query.Response) ([]query.Record, error) {
	return resp.Records, nil
}
