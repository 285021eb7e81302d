package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
	"github.com/repairtrack/repairdb/schema/mixin"
)

// RepairRequest holds the schema definition for the RepairRequest model.
type RepairRequest struct {
	schema.Schema
}

// Mixin of the RepairRequest.
func (RepairRequest) Mixin() []schema.Mixin {
	return []schema.Mixin{
		mixin.Time{},
	}
}

// Fields of the RepairRequest.
func (RepairRequest) Fields() []schema.Field {
	return []schema.Field{
		field.Int("printerId"),
		field.Text("description"),
		field.Text("accessories").
			Optional().
			Comment("Accessories handed in with the printer"),
		field.Int("statusId"),
	}
}

// Edges of the RepairRequest.
func (RepairRequest) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("printer", "Printer").
			Ref("repairRequests").
			Field("printerId").
			Unique().
			Required(),
		edge.From("status", "RepairStatus").
			Ref("repairRequests").
			Field("statusId").
			Unique().
			Required(),
		edge.To("repairParts", "RepairPart"),
		edge.To("shipping", "Shipping").
			Unique(),
		edge.To("notes", "Note"),
	}
}
