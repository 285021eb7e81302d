package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

// User holds the schema definition for the User model.
type User struct {
	schema.Schema
}

// Fields of the User.
func (User) Fields() []schema.Field {
	return []schema.Field{
		field.String("name"),
		field.String("email").
			Unique(),
		field.String("password").
			Sensitive(),
		field.String("phone").
			Optional(),
		field.Int("roleId"),
	}
}

// Edges of the User.
func (User) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("role", "Role").
			Ref("users").
			Field("roleId").
			Unique().
			Required(),
		edge.To("printers", "Printer").
			Comment("Printers owned by the user"),
		edge.To("notes", "Note"),
	}
}
