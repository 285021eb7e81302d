package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/query"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from policy rules to indicate
// how the policy evaluation should proceed. Use errors.Is() to check
// for these values:
//
//	if errors.Is(err, privacy.Allow) { ... }
//	if errors.Is(err, privacy.Deny) { ... }
//	if errors.Is(err, privacy.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("repairdb/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("repairdb/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("repairdb/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() QueryMutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() QueryMutationRule {
	return fixedDecision{Deny}
}

// ContextQueryMutationRule creates a query/mutation rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextQueryMutationRule(eval func(context.Context) error) QueryMutationRule {
	return contextDecision{eval}
}

type (
	// QueryRule decides whether a read is allowed, and may narrow it
	// through a Filter.
	QueryRule interface {
		EvalQuery(context.Context, repairdb.Operation) error
	}

	// QueryPolicy combines multiple query rules into a single policy.
	QueryPolicy []QueryRule

	// MutationRule decides whether a write is allowed.
	MutationRule interface {
		EvalMutation(context.Context, repairdb.Operation) error
	}

	// MutationPolicy combines multiple mutation rules into a single policy.
	MutationPolicy []MutationRule

	// QueryMutationRule is an interface which groups query and mutation rules.
	QueryMutationRule interface {
		QueryRule
		MutationRule
	}
)

// QueryRuleFunc type is an adapter which allows the use of
// ordinary functions as query rules.
type QueryRuleFunc func(context.Context, repairdb.Operation) error

// EvalQuery returns f(ctx, op).
func (f QueryRuleFunc) EvalQuery(ctx context.Context, op repairdb.Operation) error {
	return f(ctx, op)
}

// MutationRuleFunc type is an adapter which allows the use of
// ordinary functions as mutation rules.
type MutationRuleFunc func(context.Context, repairdb.Operation) error

// EvalMutation returns f(ctx, op).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, op repairdb.Operation) error {
	return f(ctx, op)
}

// OnModel evaluates the given rule only on operations of the named model.
func OnModel(rule QueryMutationRule, model string) QueryMutationRule {
	return modelRule{rule: rule, model: model}
}

type modelRule struct {
	rule  QueryMutationRule
	model string
}

func (r modelRule) EvalQuery(ctx context.Context, op repairdb.Operation) error {
	if op.Model() != r.model {
		return Skip
	}
	return r.rule.EvalQuery(ctx, op)
}

func (r modelRule) EvalMutation(ctx context.Context, op repairdb.Operation) error {
	if op.Model() != r.model {
		return Skip
	}
	return r.rule.EvalMutation(ctx, op)
}

// OnMutationOperation evaluates the given rule only on a given mutation operation.
func OnMutationOperation(rule MutationRule, op repairdb.Op) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m repairdb.Operation) error {
		if m.Op().Is(op) {
			return rule.EvalMutation(ctx, m)
		}
		return Skip
	})
}

// DenyMutationOperationRule returns a rule denying specified mutation operation.
func DenyMutationOperationRule(op repairdb.Op) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, m repairdb.Operation) error {
		return Denyf("repairdb/privacy: operation %s is not allowed", m.Op())
	})
	return OnMutationOperation(rule, op)
}

// AllowMutationOperationRule returns a rule allowing specified mutation operation.
func AllowMutationOperationRule(op repairdb.Op) MutationRule {
	rule := MutationRuleFunc(func(context.Context, repairdb.Operation) error {
		return Allow
	})
	return OnMutationOperation(rule, op)
}

// Policy groups query and mutation policies.
type Policy struct {
	Query    QueryPolicy
	Mutation MutationPolicy
}

// EvalQuery forwards evaluation to the query policy.
func (p Policy) EvalQuery(ctx context.Context, op repairdb.Operation) error {
	return p.Query.EvalQuery(ctx, op)
}

// EvalMutation forwards evaluation to the mutation policy.
func (p Policy) EvalMutation(ctx context.Context, op repairdb.Operation) error {
	return p.Mutation.EvalMutation(ctx, op)
}

// Policies combines multiple policies into a single policy. The client
// keeps one Policies value per model.
type Policies []repairdb.Policy

// EvalQuery evaluates the query policies. If the Allow error is returned
// from one of the policies, it stops the evaluation with a nil error.
func (policies Policies) EvalQuery(ctx context.Context, op repairdb.Operation) error {
	return policies.eval(ctx, func(policy repairdb.Policy) error {
		return policy.EvalQuery(ctx, op)
	})
}

// EvalMutation evaluates the mutation policies. If the Allow error is returned
// from one of the policies, it stops the evaluation with a nil error.
func (policies Policies) EvalMutation(ctx context.Context, op repairdb.Operation) error {
	return policies.eval(ctx, func(policy repairdb.Policy) error {
		return policy.EvalMutation(ctx, op)
	})
}

func (policies Policies) eval(ctx context.Context, eval func(repairdb.Policy) error) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := eval(policy); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// EvalQuery evaluates a query against a query policy.
func (policies QueryPolicy) EvalQuery(ctx context.Context, op repairdb.Operation) error {
	for _, policy := range policies {
		switch decision := policy.EvalQuery(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

// EvalMutation evaluates a mutation against a mutation policy.
func (policies MutationPolicy) EvalMutation(ctx context.Context, op repairdb.Operation) error {
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalQuery(context.Context, repairdb.Operation) error {
	return f.decision
}

func (f fixedDecision) EvalMutation(context.Context, repairdb.Operation) error {
	return f.decision
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalQuery(ctx context.Context, _ repairdb.Operation) error {
	return c.eval(ctx)
}

func (c contextDecision) EvalMutation(ctx context.Context, _ repairdb.Operation) error {
	return c.eval(ctx)
}

// Filter narrows the records an operation can see or write.
type Filter interface {
	// Where adds predicates on the fields of the operation's model.
	Where(...query.Predicate)
}

// Filterable is implemented by operations that support filtering. Reads
// by filter, updateMany and deleteMany are filterable; unique lookups
// and creates are not.
type Filterable interface {
	Filter() Filter
}

// FieldReader is implemented by mutations exposing the values of their payload.
type FieldReader interface {
	// Field returns the value written to the named scalar field.
	Field(name string) (any, bool)
}

// FilterFunc is an adapter that allows using ordinary functions as
// query/mutation rules that apply predicates to filter results.
//
//	privacy.FilterFunc(func(ctx context.Context, f privacy.Filter) error {
//	    f.Where(query.FieldEQ("ownerId", viewerID))
//	    return privacy.Skip
//	})
type FilterFunc func(context.Context, Filter) error

// EvalQuery calls f(ctx, op.Filter()) if the operation implements Filterable.
func (f FilterFunc) EvalQuery(ctx context.Context, op repairdb.Operation) error {
	fr, ok := op.(Filterable)
	if !ok {
		return Denyf("repairdb/privacy: %s.%s does not support filtering", op.Model(), op.Action())
	}
	return f(ctx, fr.Filter())
}

// EvalMutation calls f(ctx, op.Filter()) if the operation implements Filterable.
func (f FilterFunc) EvalMutation(ctx context.Context, op repairdb.Operation) error {
	fr, ok := op.(Filterable)
	if !ok {
		return Denyf("repairdb/privacy: %s.%s does not support filtering", op.Model(), op.Action())
	}
	return f(ctx, fr.Filter())
}

var (
	_ QueryMutationRule = FilterFunc(nil)
	_ repairdb.Policy   = Policy{}
	_ repairdb.Policy   = Policies(nil)
)
