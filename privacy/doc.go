// Package privacy provides the rules and policies the client evaluates
// before an operation reaches the database.
//
// # Core Concepts
//
//   - Policy: query and mutation rule lists attached to a model
//   - Rule: a function that returns Allow, Deny, or Skip decisions
//   - Viewer: the user performing the operation, carried by the context
//
// # Registering Policies
//
// Policies are registered on the client per model:
//
//	client.Policy("RepairRequest", privacy.Policy{
//	    Query: privacy.QueryPolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("Admin"),
//	        privacy.AlwaysAllowRule(),
//	    },
//	    Mutation: privacy.MutationPolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasAnyRole("Admin", "Technician"),
//	        privacy.AlwaysDenyRule(),
//	    },
//	})
//
// # Rule Evaluation
//
// Rules are evaluated in order until one returns a final decision:
//
//   - Allow: grants access and stops evaluation
//   - Deny: denies access and stops evaluation
//   - Skip: continues to the next rule
//
// If all rules return Skip the operation is allowed. End a policy with
// AlwaysDenyRule to deny by default.
//
// # Filters
//
// Reads by filter, updateMany and deleteMany implement Filterable. A
// FilterFunc rule can narrow them instead of deciding:
//
//	privacy.OwnerFilter("ownerId") // Printer rows of the viewer only
//
// # Errors
//
// A denied operation fails with a *repairdb.PrivacyError wrapping the
// decision:
//
//	if repairdb.IsPrivacyError(err) && errors.Is(err, privacy.Deny) { ... }
package privacy
