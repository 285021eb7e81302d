package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

// Role holds the schema definition for the Role model.
type Role struct {
	schema.Schema
}

// Fields of the Role.
func (Role) Fields() []schema.Field {
	return []schema.Field{
		field.String("name").
			Unique().
			Comment("Role name, e.g. Technician"),
	}
}

// Edges of the Role.
func (Role) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("users", "User"),
	}
}
