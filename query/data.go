package query

// Data is the payload of a create or update. It is implemented by exactly
// two variants:
//
//   - Checked expresses relations through nested writes and must not set
//     foreign key fields directly.
//   - Unchecked sets foreign key fields directly and may only nest writes
//     on relations whose foreign key lives on the related model.
type Data interface {
	// Values returns the field and relation values of the payload.
	Values() map[string]any
	// Unchecked reports whether foreign keys are set directly.
	Unchecked() bool

	sealed()
}

// Checked is the relation-aware payload. Keys are scalar field names,
// mapped to values or Atomic updates, and relation names, mapped to Nested.
type Checked map[string]any

// Values implements Data.
func (c Checked) Values() map[string]any { return c }

// Unchecked implements Data.
func (Checked) Unchecked() bool { return false }

func (Checked) sealed() {}

// Unchecked is the foreign-key payload. Keys are scalar field names,
// including foreign keys, and relation names of back-references.
type Unchecked map[string]any

// Values implements Data.
func (u Unchecked) Values() map[string]any { return u }

// Unchecked implements Data.
func (Unchecked) Unchecked() bool { return true }

func (Unchecked) sealed() {}

// AtomicOp is an arithmetic update operator.
type AtomicOp string

// Atomic update operators.
const (
	AtomicSet       AtomicOp = "set"
	AtomicIncrement AtomicOp = "increment"
	AtomicDecrement AtomicOp = "decrement"
	AtomicMultiply  AtomicOp = "multiply"
	AtomicDivide    AtomicOp = "divide"
)

// Atomic is an update applied relative to the stored value.
type Atomic struct {
	Op    AtomicOp `msgpack:"op"`
	Value any      `msgpack:"value"`
}

// Set replaces the stored value.
func Set(v any) Atomic { return Atomic{Op: AtomicSet, Value: v} }

// Increment adds v to the stored value.
func Increment(v any) Atomic { return Atomic{Op: AtomicIncrement, Value: v} }

// Decrement subtracts v from the stored value.
func Decrement(v any) Atomic { return Atomic{Op: AtomicDecrement, Value: v} }

// Multiply multiplies the stored value by v.
func Multiply(v any) Atomic { return Atomic{Op: AtomicMultiply, Value: v} }

// Divide divides the stored value by v.
func Divide(v any) Atomic { return Atomic{Op: AtomicDivide, Value: v} }

// Nested holds the writes applied to a relation as part of a create or
// update of the parent record. On creates only Create, Connect and
// ConnectOrCreate are allowed.
type Nested struct {
	Create          []Data            `msgpack:"create,omitempty"`
	Connect         []Unique          `msgpack:"connect,omitempty"`
	ConnectOrCreate []ConnectOrCreate `msgpack:"connectOrCreate,omitempty"`
	Update          []NestedUpdate    `msgpack:"update,omitempty"`
	Upsert          []NestedUpsert    `msgpack:"upsert,omitempty"`
	Delete          []Unique          `msgpack:"delete,omitempty"`
}

// ConnectOrCreate connects the record matching Where, or creates it.
type ConnectOrCreate struct {
	Where  Unique `msgpack:"where"`
	Create Data   `msgpack:"create"`
}

// NestedUpdate updates a related record.
type NestedUpdate struct {
	Where Unique `msgpack:"where"`
	Data  Data   `msgpack:"data"`
}

// NestedUpsert updates a related record or creates it.
type NestedUpsert struct {
	Where  Unique `msgpack:"where"`
	Create Data   `msgpack:"create"`
	Update Data   `msgpack:"update"`
}

// CreateNested returns a Nested creating the given records.
func CreateNested(data ...Data) Nested { return Nested{Create: data} }

// ConnectNested returns a Nested connecting the given records.
func ConnectNested(where ...Unique) Nested { return Nested{Connect: where} }
