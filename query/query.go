package query

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	DirAsc  Direction = "asc"
	DirDesc Direction = "desc"
)

// Order is one orderBy entry. Aggregate is only valid in groupBy, where
// it orders by an aggregate of Field.
type Order struct {
	Field     string    `msgpack:"field"`
	Direction Direction `msgpack:"dir,omitempty"`
	Aggregate string    `msgpack:"agg,omitempty"`
}

// Asc orders by field in ascending order.
func Asc(field string) Order { return Order{Field: field, Direction: DirAsc} }

// Desc orders by field in descending order.
func Desc(field string) Order { return Order{Field: field, Direction: DirDesc} }

// Desc reports whether o sorts in descending order.
func (o Order) Desc() bool { return o.Direction == DirDesc }

// Unique identifies at most one record by a unique field. And holds
// additional non-unique filters the record must satisfy.
//
// In nested writes on to-one relations, the zero Unique designates the
// currently related record.
type Unique struct {
	Field string      `msgpack:"field"`
	Value any         `msgpack:"value"`
	And   []Predicate `msgpack:"and,omitempty"`
}

// ByID returns the Unique selecting the record with the given id.
func ByID(id int) Unique { return Unique{Field: "id", Value: int64(id)} }

// IsZero reports whether u selects nothing explicitly.
func (u Unique) IsZero() bool { return u.Field == "" && len(u.And) == 0 }

// Predicates returns the where clause equivalent to u.
func (u Unique) Predicates() []Predicate {
	preds := make([]Predicate, 0, len(u.And)+1)
	if u.Field != "" {
		preds = append(preds, FieldEQ(u.Field, u.Value))
	}
	return append(preds, u.And...)
}

// Projection shapes the returned records. Select and Include are
// mutually exclusive, and so are Select and Omit.
type Projection struct {
	Select *Select `msgpack:"select,omitempty"`
	// Include adds relations on top of the default scalar set. A nil
	// query loads the relation with its defaults.
	Include map[string]*Query `msgpack:"include,omitempty"`
	// Omit removes scalar fields from the default set. A false value
	// re-enables a field omitted by the client configuration.
	Omit map[string]bool `msgpack:"omit,omitempty"`
	// Count lists to-many relations whose sizes are returned under "_count".
	Count []string `msgpack:"count,omitempty"`
}

// Select enumerates the scalar fields and relations to return.
type Select struct {
	Fields    []string          `msgpack:"fields,omitempty"`
	Relations map[string]*Query `msgpack:"relations,omitempty"`
}

// Query holds the arguments of findFirst and findMany, and of relations
// loaded through a projection.
type Query struct {
	Where   []Predicate `msgpack:"where,omitempty"`
	OrderBy []Order     `msgpack:"orderBy,omitempty"`
	Cursor  *Unique     `msgpack:"cursor,omitempty"`
	// Take limits the number of records. A negative value reads
	// backwards from the cursor or the end of the ordered set.
	Take     *int     `msgpack:"take,omitempty"`
	Skip     int      `msgpack:"skip,omitempty"`
	Distinct []string `msgpack:"distinct,omitempty"`
	Projection
}

// Take returns a pointer to n, for use in Query.Take and limits.
func Take(n int) *int { return &n }

// UniqueArgs holds the arguments of findUnique and findUniqueOrThrow.
type UniqueArgs struct {
	Where Unique `msgpack:"where"`
	Projection
}

// CreateArgs holds the arguments of create.
type CreateArgs struct {
	Data Data `msgpack:"data"`
	Projection
}

// CreateManyArgs holds the arguments of createMany and createManyAndReturn.
// Projection only applies to createManyAndReturn.
type CreateManyArgs struct {
	Data           []Data `msgpack:"data"`
	SkipDuplicates bool   `msgpack:"skipDuplicates,omitempty"`
	Projection
}

// UpdateArgs holds the arguments of update.
type UpdateArgs struct {
	Where Unique `msgpack:"where"`
	Data  Data   `msgpack:"data"`
	Projection
}

// UpdateManyArgs holds the arguments of updateMany and updateManyAndReturn.
type UpdateManyArgs struct {
	Where []Predicate `msgpack:"where,omitempty"`
	Data  Data        `msgpack:"data"`
	Limit *int        `msgpack:"limit,omitempty"`
	Projection
}

// UpsertArgs holds the arguments of upsert.
type UpsertArgs struct {
	Where  Unique `msgpack:"where"`
	Create Data   `msgpack:"create"`
	Update Data   `msgpack:"update"`
	Projection
}

// DeleteArgs holds the arguments of delete.
type DeleteArgs struct {
	Where Unique `msgpack:"where"`
	Projection
}

// DeleteManyArgs holds the arguments of deleteMany.
type DeleteManyArgs struct {
	Where []Predicate `msgpack:"where,omitempty"`
	Limit *int        `msgpack:"limit,omitempty"`
}

// CountArgs holds the arguments of count.
type CountArgs struct {
	Where   []Predicate `msgpack:"where,omitempty"`
	OrderBy []Order     `msgpack:"orderBy,omitempty"`
	Cursor  *Unique     `msgpack:"cursor,omitempty"`
	Take    *int        `msgpack:"take,omitempty"`
	Skip    int         `msgpack:"skip,omitempty"`
}

// Aggregates selects the fields summarized by aggregate and groupBy.
// Count accepts CountAll in addition to field names.
type Aggregates struct {
	Count []string `msgpack:"count,omitempty"`
	Avg   []string `msgpack:"avg,omitempty"`
	Sum   []string `msgpack:"sum,omitempty"`
	Min   []string `msgpack:"min,omitempty"`
	Max   []string `msgpack:"max,omitempty"`
}

// Empty reports whether no aggregate is selected.
func (a Aggregates) Empty() bool {
	return len(a.Count)+len(a.Avg)+len(a.Sum)+len(a.Min)+len(a.Max) == 0
}

// AggregateArgs holds the arguments of aggregate.
type AggregateArgs struct {
	Where   []Predicate `msgpack:"where,omitempty"`
	OrderBy []Order     `msgpack:"orderBy,omitempty"`
	Cursor  *Unique     `msgpack:"cursor,omitempty"`
	Take    *int        `msgpack:"take,omitempty"`
	Skip    int         `msgpack:"skip,omitempty"`
	Aggregates
}

// GroupByArgs holds the arguments of groupBy.
type GroupByArgs struct {
	By      []string    `msgpack:"by"`
	Where   []Predicate `msgpack:"where,omitempty"`
	Having  []Predicate `msgpack:"having,omitempty"`
	OrderBy []Order     `msgpack:"orderBy,omitempty"`
	Take    *int        `msgpack:"take,omitempty"`
	Skip    int         `msgpack:"skip,omitempty"`
	Aggregates
}

// AggregateResult is the result of aggregate, or one group of groupBy.
// Avg and Sum values are float64 and int64 or float64 respectively, Min
// and Max keep the field type. Values are nil when no row contributed.
type AggregateResult struct {
	By    Record           `msgpack:"by,omitempty"`
	Count map[string]int64 `msgpack:"count,omitempty"`
	Avg   map[string]any   `msgpack:"avg,omitempty"`
	Sum   map[string]any   `msgpack:"sum,omitempty"`
	Min   map[string]any   `msgpack:"min,omitempty"`
	Max   map[string]any   `msgpack:"max,omitempty"`
}
