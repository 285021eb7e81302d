package query

import "time"

// StringField provides typed predicates for a string field.
//
// Usage:
//
//	var Email = query.StringField("email")
//	args.Where = append(args.Where, Email.HasSuffix("@x.com"))
type StringField string

// Name returns the field name.
func (f StringField) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f StringField) EQ(v string) Predicate { return FieldEQ(string(f), v) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f StringField) NEQ(v string) Predicate { return FieldNEQ(string(f), v) }

// In returns a predicate that checks if the field value is in the given list.
func (f StringField) In(vs ...string) Predicate { return FieldIn(string(f), vs...) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f StringField) NotIn(vs ...string) Predicate { return FieldNotIn(string(f), vs...) }

// LT returns a predicate that checks if the field is less than the given value.
func (f StringField) LT(v string) Predicate { return FieldLT(string(f), v) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f StringField) LTE(v string) Predicate { return FieldLTE(string(f), v) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f StringField) GT(v string) Predicate { return FieldGT(string(f), v) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f StringField) GTE(v string) Predicate { return FieldGTE(string(f), v) }

// Contains returns a predicate that checks if the field contains the given substring.
func (f StringField) Contains(v string) Predicate { return FieldContains(string(f), v) }

// ContainsFold returns a predicate that checks if the field contains the given substring (case-insensitive).
func (f StringField) ContainsFold(v string) Predicate { return Fold(f.Contains(v)) }

// HasPrefix returns a predicate that checks if the field has the given prefix.
func (f StringField) HasPrefix(v string) Predicate { return FieldHasPrefix(string(f), v) }

// HasSuffix returns a predicate that checks if the field has the given suffix.
func (f StringField) HasSuffix(v string) Predicate { return FieldHasSuffix(string(f), v) }

// EqualFold returns a predicate that checks if the field equals the given value (case-insensitive).
func (f StringField) EqualFold(v string) Predicate { return Fold(f.EQ(v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f StringField) IsNull() Predicate { return FieldIsNull(string(f)) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f StringField) NotNull() Predicate { return FieldNotNull(string(f)) }

// Asc orders by the field in ascending order.
func (f StringField) Asc() Order { return Asc(string(f)) }

// Desc orders by the field in descending order.
func (f StringField) Desc() Order { return Desc(string(f)) }

// IntField provides typed predicates for an integer field.
type IntField string

// Name returns the field name.
func (f IntField) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f IntField) EQ(v int) Predicate { return FieldEQ(string(f), int64(v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f IntField) NEQ(v int) Predicate { return FieldNEQ(string(f), int64(v)) }

// In returns a predicate that checks if the field value is in the given list.
func (f IntField) In(vs ...int) Predicate { return FieldIn(string(f), int64s(vs)...) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f IntField) NotIn(vs ...int) Predicate { return FieldNotIn(string(f), int64s(vs)...) }

// LT returns a predicate that checks if the field is less than the given value.
func (f IntField) LT(v int) Predicate { return FieldLT(string(f), int64(v)) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f IntField) LTE(v int) Predicate { return FieldLTE(string(f), int64(v)) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f IntField) GT(v int) Predicate { return FieldGT(string(f), int64(v)) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f IntField) GTE(v int) Predicate { return FieldGTE(string(f), int64(v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f IntField) IsNull() Predicate { return FieldIsNull(string(f)) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f IntField) NotNull() Predicate { return FieldNotNull(string(f)) }

// Asc orders by the field in ascending order.
func (f IntField) Asc() Order { return Asc(string(f)) }

// Desc orders by the field in descending order.
func (f IntField) Desc() Order { return Desc(string(f)) }

// FloatField provides typed predicates for a float field.
type FloatField string

// Name returns the field name.
func (f FloatField) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f FloatField) EQ(v float64) Predicate { return FieldEQ(string(f), v) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f FloatField) NEQ(v float64) Predicate { return FieldNEQ(string(f), v) }

// In returns a predicate that checks if the field value is in the given list.
func (f FloatField) In(vs ...float64) Predicate { return FieldIn(string(f), vs...) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f FloatField) NotIn(vs ...float64) Predicate { return FieldNotIn(string(f), vs...) }

// LT returns a predicate that checks if the field is less than the given value.
func (f FloatField) LT(v float64) Predicate { return FieldLT(string(f), v) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f FloatField) LTE(v float64) Predicate { return FieldLTE(string(f), v) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f FloatField) GT(v float64) Predicate { return FieldGT(string(f), v) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f FloatField) GTE(v float64) Predicate { return FieldGTE(string(f), v) }

// Asc orders by the field in ascending order.
func (f FloatField) Asc() Order { return Asc(string(f)) }

// Desc orders by the field in descending order.
func (f FloatField) Desc() Order { return Desc(string(f)) }

// TimeField provides typed predicates for a timestamp field.
type TimeField string

// Name returns the field name.
func (f TimeField) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f TimeField) EQ(v time.Time) Predicate { return FieldEQ(string(f), v.UTC()) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f TimeField) NEQ(v time.Time) Predicate { return FieldNEQ(string(f), v.UTC()) }

// LT returns a predicate that checks if the field is before the given value.
func (f TimeField) LT(v time.Time) Predicate { return FieldLT(string(f), v.UTC()) }

// LTE returns a predicate that checks if the field is not after the given value.
func (f TimeField) LTE(v time.Time) Predicate { return FieldLTE(string(f), v.UTC()) }

// GT returns a predicate that checks if the field is after the given value.
func (f TimeField) GT(v time.Time) Predicate { return FieldGT(string(f), v.UTC()) }

// GTE returns a predicate that checks if the field is not before the given value.
func (f TimeField) GTE(v time.Time) Predicate { return FieldGTE(string(f), v.UTC()) }

// IsNull returns a predicate that checks if the field is NULL.
func (f TimeField) IsNull() Predicate { return FieldIsNull(string(f)) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f TimeField) NotNull() Predicate { return FieldNotNull(string(f)) }

// Asc orders by the field in ascending order.
func (f TimeField) Asc() Order { return Asc(string(f)) }

// Desc orders by the field in descending order.
func (f TimeField) Desc() Order { return Desc(string(f)) }

// BoolField provides typed predicates for a boolean field.
type BoolField string

// Name returns the field name.
func (f BoolField) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f BoolField) EQ(v bool) Predicate { return FieldEQ(string(f), v) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f BoolField) NEQ(v bool) Predicate { return FieldNEQ(string(f), v) }

// IsNull returns a predicate that checks if the field is NULL.
func (f BoolField) IsNull() Predicate { return FieldIsNull(string(f)) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f BoolField) NotNull() Predicate { return FieldNotNull(string(f)) }

// RelationField provides existence quantifiers over a relation. The
// predicates passed to the quantifiers are evaluated on the related model.
type RelationField string

// Name returns the relation name.
func (f RelationField) Name() string { return string(f) }

// Some matches when at least one related record satisfies all preds.
func (f RelationField) Some(preds ...Predicate) Predicate {
	return Predicate{Op: OpSome, Field: string(f), Preds: preds}
}

// Every matches when all related records satisfy preds. It is true
// for records without relations.
func (f RelationField) Every(preds ...Predicate) Predicate {
	return Predicate{Op: OpEvery, Field: string(f), Preds: preds}
}

// None matches when no related record satisfies preds.
func (f RelationField) None(preds ...Predicate) Predicate {
	return Predicate{Op: OpNone, Field: string(f), Preds: preds}
}

// Is matches when the related record exists and satisfies preds.
func (f RelationField) Is(preds ...Predicate) Predicate {
	return Predicate{Op: OpIs, Field: string(f), Preds: preds}
}

// IsNot matches when the related record is missing or does not satisfy preds.
func (f RelationField) IsNot(preds ...Predicate) Predicate {
	return Predicate{Op: OpIsNot, Field: string(f), Preds: preds}
}

func int64s(vs []int) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return out
}
