package schema

import (
	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

type (
	// Field is implemented by field builders.
	Field interface {
		Descriptor() *field.Descriptor
	}

	// Edge is implemented by edge builders.
	Edge interface {
		Descriptor() *edge.Descriptor
	}

	// Mixin is a reusable set of fields and edges.
	Mixin interface {
		Fields() []Field
		Edges() []Edge
	}

	// Interface is implemented by model definitions.
	Interface interface {
		Mixin() []Mixin
		Fields() []Field
		Edges() []Edge
	}

	// Tabler overrides the derived table name of a model.
	Tabler interface {
		Table() string
	}
)

// Schema is the default implementation of Interface. It should be
// embedded in every model definition.
type Schema struct{}

// Mixin of the schema.
func (Schema) Mixin() []Mixin { return nil }

// Fields of the schema.
func (Schema) Fields() []Field { return nil }

// Edges of the schema.
func (Schema) Edges() []Edge { return nil }

var _ Interface = (*Schema)(nil)
