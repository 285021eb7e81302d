package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

// Printer holds the schema definition for the Printer model.
type Printer struct {
	schema.Schema
}

// Fields of the Printer.
func (Printer) Fields() []schema.Field {
	return []schema.Field{
		field.String("model"),
		field.String("serialNumber").
			Unique(),
		field.Int("ownerId"),
	}
}

// Edges of the Printer.
func (Printer) Edges() []schema.Edge {
	return []schema.Edge{
		edge.From("owner", "User").
			Ref("printers").
			Field("ownerId").
			Unique().
			Required(),
		edge.To("repairRequests", "RepairRequest"),
	}
}
