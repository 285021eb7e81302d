package query

// Op is the operator of a predicate node.
type Op string

// Scalar operators.
const (
	OpEQ        Op = "equals"
	OpNEQ       Op = "not"
	OpIn        Op = "in"
	OpNotIn     Op = "notIn"
	OpLT        Op = "lt"
	OpLTE       Op = "lte"
	OpGT        Op = "gt"
	OpGTE       Op = "gte"
	OpContains  Op = "contains"
	OpHasPrefix Op = "startsWith"
	OpHasSuffix Op = "endsWith"
	OpIsNull    Op = "isNull"
	OpNotNull   Op = "notNull"
)

// Logical operators.
const (
	OpAnd Op = "AND"
	OpOr  Op = "OR"
	OpNot Op = "NOT"
)

// Relation quantifiers. Some, Every and None apply to to-many relations,
// Is and IsNot to to-one relations.
const (
	OpSome  Op = "some"
	OpEvery Op = "every"
	OpNone  Op = "none"
	OpIs    Op = "is"
	OpIsNot Op = "isNot"
)

// Mode controls string comparison.
type Mode string

// String comparison modes.
const (
	ModeDefault     Mode = ""
	ModeInsensitive Mode = "insensitive"
)

// Aggregate names usable in having clauses, orderBy of groupBy and results.
const (
	AggCount = "_count"
	AggAvg   = "_avg"
	AggSum   = "_sum"
	AggMin   = "_min"
	AggMax   = "_max"
	// CountAll is the field name counting every row in _count selectors.
	CountAll = "_all"
)

// Predicate is a node of the recursive where grammar. Leaf nodes carry a
// Field and a Value, logical nodes combine Preds, and relation nodes
// carry the relation name in Field and the target model predicates in Preds.
type Predicate struct {
	Op    Op     `msgpack:"op"`
	Field string `msgpack:"field,omitempty"`
	// Aggregate is set in having clauses to compare an aggregate of Field
	// instead of its grouped value.
	Aggregate string      `msgpack:"agg,omitempty"`
	Mode      Mode        `msgpack:"mode,omitempty"`
	Value     any         `msgpack:"value,omitempty"`
	Preds     []Predicate `msgpack:"preds,omitempty"`
}

// IsLeaf reports whether p compares a scalar field.
func (p Predicate) IsLeaf() bool {
	switch p.Op {
	case OpAnd, OpOr, OpNot, OpSome, OpEvery, OpNone, OpIs, OpIsNot:
		return false
	}
	return true
}

// IsRelation reports whether p is a relation quantifier.
func (p Predicate) IsRelation() bool {
	switch p.Op {
	case OpSome, OpEvery, OpNone, OpIs, OpIsNot:
		return true
	}
	return false
}

// And groups predicates with the AND operator.
func And(preds ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Preds: preds}
}

// Or groups predicates with the OR operator.
func Or(preds ...Predicate) Predicate {
	return Predicate{Op: OpOr, Preds: preds}
}

// Not matches rows satisfying none of the given predicates.
func Not(preds ...Predicate) Predicate {
	return Predicate{Op: OpNot, Preds: preds}
}

// Fold returns a copy of p that compares strings case-insensitively.
func Fold(p Predicate) Predicate {
	p.Mode = ModeInsensitive
	return p
}

// FieldEQ returns a predicate checking that field equals v.
func FieldEQ(field string, v any) Predicate {
	return Predicate{Op: OpEQ, Field: field, Value: v}
}

// FieldNEQ returns a predicate checking that field is not v.
func FieldNEQ(field string, v any) Predicate {
	return Predicate{Op: OpNEQ, Field: field, Value: v}
}

// FieldIn returns a predicate checking that field is one of vs.
func FieldIn[T any](field string, vs ...T) Predicate {
	return Predicate{Op: OpIn, Field: field, Value: toAnys(vs)}
}

// FieldNotIn returns a predicate checking that field is none of vs.
func FieldNotIn[T any](field string, vs ...T) Predicate {
	return Predicate{Op: OpNotIn, Field: field, Value: toAnys(vs)}
}

// FieldLT returns a predicate checking that field is less than v.
func FieldLT(field string, v any) Predicate {
	return Predicate{Op: OpLT, Field: field, Value: v}
}

// FieldLTE returns a predicate checking that field is less than or equal to v.
func FieldLTE(field string, v any) Predicate {
	return Predicate{Op: OpLTE, Field: field, Value: v}
}

// FieldGT returns a predicate checking that field is greater than v.
func FieldGT(field string, v any) Predicate {
	return Predicate{Op: OpGT, Field: field, Value: v}
}

// FieldGTE returns a predicate checking that field is greater than or equal to v.
func FieldGTE(field string, v any) Predicate {
	return Predicate{Op: OpGTE, Field: field, Value: v}
}

// FieldContains returns a predicate checking that field contains s.
func FieldContains(field, s string) Predicate {
	return Predicate{Op: OpContains, Field: field, Value: s}
}

// FieldHasPrefix returns a predicate checking that field starts with s.
func FieldHasPrefix(field, s string) Predicate {
	return Predicate{Op: OpHasPrefix, Field: field, Value: s}
}

// FieldHasSuffix returns a predicate checking that field ends with s.
func FieldHasSuffix(field, s string) Predicate {
	return Predicate{Op: OpHasSuffix, Field: field, Value: s}
}

// FieldIsNull returns a predicate checking that field is NULL.
func FieldIsNull(field string) Predicate {
	return Predicate{Op: OpIsNull, Field: field}
}

// FieldNotNull returns a predicate checking that field is not NULL.
func FieldNotNull(field string) Predicate {
	return Predicate{Op: OpNotNull, Field: field}
}

// Having returns a builder for predicates on an aggregate of field,
// e.g. Having(AggAvg, "price").GT(10).
func Having(aggregate, field string) AggregateField {
	return AggregateField{aggregate: aggregate, field: field}
}

// AggregateField builds having predicates on an aggregate expression.
type AggregateField struct {
	aggregate string
	field     string
}

func (f AggregateField) pred(op Op, v any) Predicate {
	return Predicate{Op: op, Field: f.field, Aggregate: f.aggregate, Value: v}
}

// EQ compares the aggregate with v.
func (f AggregateField) EQ(v any) Predicate { return f.pred(OpEQ, v) }

// NEQ compares the aggregate with v.
func (f AggregateField) NEQ(v any) Predicate { return f.pred(OpNEQ, v) }

// LT compares the aggregate with v.
func (f AggregateField) LT(v any) Predicate { return f.pred(OpLT, v) }

// LTE compares the aggregate with v.
func (f AggregateField) LTE(v any) Predicate { return f.pred(OpLTE, v) }

// GT compares the aggregate with v.
func (f AggregateField) GT(v any) Predicate { return f.pred(OpGT, v) }

// GTE compares the aggregate with v.
func (f AggregateField) GTE(v any) Predicate { return f.pred(OpGTE, v) }

func toAnys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i := range vs {
		out[i] = vs[i]
	}
	return out
}
