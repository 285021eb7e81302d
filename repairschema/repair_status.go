package repairschema

import (
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

// RepairStatus holds the schema definition for the RepairStatus model.
type RepairStatus struct {
	schema.Schema
}

// Table pins the plural, which the inflector leaves as "repair_status".
func (RepairStatus) Table() string { return "repair_statuses" }

// Fields of the RepairStatus.
func (RepairStatus) Fields() []schema.Field {
	return []schema.Field{
		field.String("name").
			Unique().
			Comment("Status label, e.g. Pending"),
	}
}

// Edges of the RepairStatus.
func (RepairStatus) Edges() []schema.Edge {
	return []schema.Edge{
		edge.To("repairRequests", "RepairRequest"),
	}
}
