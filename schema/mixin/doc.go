// Package mixin provides reusable field sets for model definitions.
//
// A mixin embeds Schema and overrides the methods it needs:
//
//	type Audit struct{ mixin.Schema }
//
//	func (Audit) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.String("createdBy").Optional(),
//	    }
//	}
//
// Models list their mixins in Mixin:
//
//	func (RepairRequest) Mixin() []schema.Mixin {
//	    return []schema.Mixin{mixin.Time{}}
//	}
package mixin
