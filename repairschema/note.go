package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
	"github.com/repairtrack/repairdb/schema/mixin"
)

// Note holds the schema definition for the Note model.
type Note struct {
	schema.Schema
}

// Mixin of the Note.
func (Note) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.CreateTime{},
	}
}

// Fields of the Note.
func (Note) Fields() []schema.Field {
	return []schema.Field{
		field.Int("repairRequestId"),
		field.Int("userId"),
		field.Text("note"),
	}
}

// Edges of the Note.
func (Note) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("repairRequest", "RepairRequest").
			Ref("notes").
			Field("repairRequestId").
			Unique().
			Required(),
		edge.From("user", "User").
			Ref("notes").
			Field("userId").
			Unique().
			Required(),
	}
}
