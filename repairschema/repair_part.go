package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

// RepairPart holds the schema definition for the RepairPart model.
type RepairPart struct {
	schema.Schema
}

// Fields of the RepairPart.
func (RepairPart) Fields() []schema.Field {
	return []schema.Field{
		field.Int("repairRequestId"),
		field.String("partName"),
		field.Int("quantity"),
		field.Float("price"),
	}
}

// Edges of the RepairPart.
func (RepairPart) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("repairRequest", "RepairRequest").
			Ref("repairParts").
			Field("repairRequestId").
			Unique().
			Required(),
	}
}
