package privacy

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/query"
)

// Viewer represents the authenticated user making a request.
// This interface should be implemented by application-specific user types.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles, e.g. "Technician".
	GetRoles() []string
}

// viewerCtxKey is the context key for storing the viewer.
type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context.
// Returns nil if no viewer is present.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID string
	Roles  []string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string {
	return v.UserID
}

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string {
	return v.Roles
}

// DenyIfNoViewer returns a rule that denies access if no viewer is present in the context.
// This is typically used as the first rule in a policy to require authentication.
//
//	privacy.Policy{
//	    Mutation: privacy.MutationPolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("Admin"),
//	        privacy.AlwaysDenyRule(),
//	    },
//	}
func DenyIfNoViewer() QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows access if the viewer has the specified role.
// Skips if the viewer doesn't have the role (allows next rule to evaluate).
func HasRole(role string) QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		if slices.Contains(viewer.GetRoles(), role) {
			return Allow
		}
		return Skip
	})
}

// HasAnyRole returns a rule that allows access if the viewer has any of the specified roles.
// Skips if the viewer doesn't have any of the roles (allows next rule to evaluate).
func HasAnyRole(roles ...string) QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerRoles := viewer.GetRoles()
		for _, role := range roles {
			if slices.Contains(viewerRoles, role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a mutation rule that allows a write whose payload sets
// field to the viewer's ID, e.g. IsOwner("ownerId") on Printer.
//
//	privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.IsOwner("ownerId"),
//	    privacy.AlwaysDenyRule(),
//	}
func IsOwner(field string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, op repairdb.Operation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		fr, ok := op.(FieldReader)
		if !ok {
			return Skip
		}
		value, ok := fr.Field(field)
		if !ok {
			return Skip
		}
		var fieldID string
		switch v := value.(type) {
		case string:
			fieldID = v
		case int64:
			fieldID = strconv.FormatInt(v, 10)
		case int:
			fieldID = strconv.Itoa(v)
		default:
			fieldID = fmt.Sprintf("%v", v)
		}
		if fieldID == viewer.GetID() {
			return Allow
		}
		return Skip
	})
}

// OwnerFilter returns a rule restricting filterable operations to the
// records whose field holds the viewer's ID. Operations that cannot be
// filtered are skipped, so unique lookups need a rule of their own.
//
//	privacy.Policy{
//	    Query: privacy.QueryPolicy{
//	        privacy.HasRole("Technician"),
//	        privacy.OwnerFilter("ownerId"),
//	    },
//	}
func OwnerFilter(field string) QueryMutationRule {
	return optionalFilter{func(ctx context.Context, f Filter) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("privacy: viewer required for owner-filtered access")
		}
		id, err := strconv.ParseInt(viewer.GetID(), 10, 64)
		if err != nil {
			return Denyf("privacy: invalid viewer id %q", viewer.GetID())
		}
		f.Where(query.FieldEQ(field, id))
		return Skip
	}}
}

// optionalFilter evaluates a FilterFunc on filterable operations and
// skips the others.
type optionalFilter struct {
	f FilterFunc
}

func (o optionalFilter) EvalQuery(ctx context.Context, op repairdb.Operation) error {
	if _, ok := op.(Filterable); !ok {
		return Skip
	}
	return o.f.EvalQuery(ctx, op)
}

func (o optionalFilter) EvalMutation(ctx context.Context, op repairdb.Operation) error {
	if _, ok := op.(Filterable); !ok {
		return Skip
	}
	return o.f.EvalMutation(ctx, op)
}

// OwnerQueryRule returns a query rule that denies reads without a viewer.
// Use this as a guard in front of OwnerFilter.
func OwnerQueryRule() QueryRule {
	return QueryRuleFunc(func(ctx context.Context, _ repairdb.Operation) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("privacy: viewer required for owner-filtered query")
		}
		return Skip
	})
}
