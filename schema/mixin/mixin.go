package mixin

import (
	"time"

	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// Schema is the default implementation for the schema.Mixin interface.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []schema.Field { return nil }

// Edges returns the edges of the mixin.
func (Schema) Edges() []schema.Edge { return nil }

// schema mixin must implement `Mixin` interface.
var _ schema.Mixin = (*Schema)(nil)

// Time adds createdAt and updatedAt timestamp fields to a model.
// createdAt is set on creation and is immutable. updatedAt is set on
// creation, refreshed on every update and may never precede createdAt.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []schema.Field {
	return append(
		CreateTime{}.Fields(),
		field.Time("updatedAt").
			Default(time.Now).
			UpdateDefault(time.Now).
			NotBefore("createdAt").
			Comment("Timestamp when the record was last updated"),
	)
}

// CreateTime adds only the createdAt timestamp field to a model.
type CreateTime struct {
	Schema
}

// Fields returns the createdAt field.
func (CreateTime) Fields() []schema.Field {
	return []schema.Field{
		field.Time("createdAt").
			Default(time.Now).
			Immutable().
			Comment("Timestamp when the record was created"),
	}
}

var (
	_ schema.Mixin = (*Time)(nil)
	_ schema.Mixin = (*CreateTime)(nil)
)
