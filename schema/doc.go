// Package schema provides the building blocks for describing models and
// resolves them into a Graph: the registry every other layer is typed
// against.
//
// # Quick Start
//
// Define a model by embedding schema.Schema and implementing the methods
// you need:
//
//	type Printer struct{ schema.Schema }
//
//	func (Printer) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.String("model"),
//	        field.String("serialNumber").Unique(),
//	        field.Int("ownerId"),
//	    }
//	}
//
//	func (Printer) Edges() []schema.Edge {
//	    return []schema.Edge{
//	        edge.From("owner", "User").Ref("printers").Field("ownerId").Unique().Required(),
//	        edge.To("repairRequests", "RepairRequest"),
//	    }
//	}
//
// Every model gets an auto-increment integer "id" field unless it declares
// one. Table names are the pluralized snake case of the model name and can
// be overridden by implementing Tabler.
//
// # Resolving
//
//	g, err := schema.NewGraph(Role{}, User{}, Printer{})
//	m := g.Model("Printer")
//	rel := m.Relation("owner") // M2O, owns the owner_id column
package schema
