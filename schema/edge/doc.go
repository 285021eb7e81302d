// Package edge provides fluent builders for defining relations between models.
//
// # Edge Types
//
//   - edge.To: declares the association on the "has" side
//   - edge.From: declares the back-reference, which owns the foreign key
//
// # Relationship Cardinality
//
//	// One-to-Many: Role has many Users
//	edge.To("users", "User")
//
//	// Many-to-One: User belongs to a Role through the roleId column
//	edge.From("role", "Role").Ref("users").Field("roleId").Unique().Required()
//
//	// One-to-One: RepairRequest has at most one Shipping
//	edge.To("shipping", "Shipping").Unique()
//	edge.From("repairRequest", "RepairRequest").Ref("shipping").Field("repairRequestId").Unique().Required()
//
// The side declaring Field owns the foreign key. Many-to-many relations
// are not supported.
package edge
