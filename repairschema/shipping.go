package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

// Shipping holds the schema definition for the Shipping model.
type Shipping struct {
	schema.Schema
}

// Fields of the Shipping.
func (Shipping) Fields() []schema.Field {
	return []schema.Field{
		field.Int("repairRequestId").
			Unique(),
		field.String("courier"),
		field.String("trackingNumber"),
		field.Time("shippedAt").
			Optional(),
		field.String("status"),
	}
}

// Edges of the Shipping.
func (Shipping) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("repairRequest", "RepairRequest").
			Ref("shipping").
			Field("repairRequestId").
			Unique().
			Required(),
	}
}
