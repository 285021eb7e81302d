package client

import (
	"context"
	"slices"
	"sync"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/privacy"
	"github.com/repairtrack/repairdb/query"
)

// policies holds the registered policies per model. It is shared by a
// client and the transaction clients derived from it.
type policies struct {
	mu sync.RWMutex
	m  map[string]privacy.Policies
}

func (p *policies) add(model string, policy repairdb.Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]privacy.Policies)
	}
	p.m[model] = append(p.m[model], policy)
}

func (p *policies) get(model string) privacy.Policies {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.m[model]
}

// operation exposes a pending request to privacy rules.
type operation struct {
	req query.Request
}

func (o *operation) Model() string   { return o.req.Model }
func (o *operation) Action() string  { return string(o.req.Action) }
func (o *operation) Op() repairdb.Op { return o.req.Action.Op() }
func (o *operation) String() string  { return o.req.String() }

// Field returns the value the request writes to a scalar field. Upserts
// report the create payload first.
func (o *operation) Field(name string) (any, bool) {
	var data []query.Data
	switch a := o.req.Args.(type) {
	case *query.CreateArgs:
		data = append(data, a.Data)
	case *query.UpdateArgs:
		data = append(data, a.Data)
	case *query.UpsertArgs:
		data = append(data, a.Create, a.Update)
	case *query.UpdateManyArgs:
		data = append(data, a.Data)
	}
	for _, d := range data {
		if d == nil {
			continue
		}
		if v, ok := d.Values()[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// filteredOperation is an operation over a filter, which rules may narrow.
type filteredOperation struct {
	operation
	where []query.Predicate
}

func (o *filteredOperation) Filter() privacy.Filter { return o }

func (o *filteredOperation) Where(preds ...query.Predicate) {
	o.where = append(o.where, preds...)
}

var (
	_ privacy.FieldReader = (*operation)(nil)
	_ privacy.Filterable  = (*filteredOperation)(nil)
)

func filterable(req query.Request) bool {
	switch req.Args.(type) {
	case *query.Query, *query.CountArgs, *query.AggregateArgs, *query.GroupByArgs,
		*query.UpdateManyArgs, *query.DeleteManyArgs:
		return true
	}
	return false
}

// authorize evaluates the policies of the request model and returns the
// request narrowed by the filters the rules added.
func (rt *runtime) authorize(ctx context.Context, req query.Request) (query.Request, error) {
	ps := rt.policies.get(req.Model)
	if len(ps) == 0 {
		if _, ok := privacy.DecisionFromContext(ctx); !ok {
			return req, nil
		}
	}
	var (
		op  repairdb.Operation
		fop *filteredOperation
	)
	if filterable(req) {
		fop = &filteredOperation{operation: operation{req: req}}
		op = fop
	} else {
		op = &operation{req: req}
	}
	var err error
	if req.Action.IsRead() {
		err = ps.EvalQuery(ctx, op)
	} else {
		err = ps.EvalMutation(ctx, op)
	}
	if err != nil {
		return req, &repairdb.PrivacyError{Model: req.Model, Action: string(req.Action), Err: err}
	}
	if fop != nil && len(fop.where) > 0 {
		req.Args = withWhere(req.Args, fop.where)
	}
	return req, nil
}

// withWhere returns a copy of args with preds added to its filter.
func withWhere(args any, preds []query.Predicate) any {
	and := func(where []query.Predicate) []query.Predicate {
		return append(slices.Clone(where), preds...)
	}
	switch a := args.(type) {
	case *query.Query:
		c := *a
		c.Where = and(a.Where)
		return &c
	case *query.CountArgs:
		c := *a
		c.Where = and(a.Where)
		return &c
	case *query.AggregateArgs:
		c := *a
		c.Where = and(a.Where)
		return &c
	case *query.GroupByArgs:
		c := *a
		c.Where = and(a.Where)
		return &c
	case *query.UpdateManyArgs:
		c := *a
		c.Where = and(a.Where)
		return &c
	case *query.DeleteManyArgs:
		c := *a
		c.Where = and(a.Where)
		return &c
	}
	return args
}
