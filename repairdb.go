// Package repairdb holds the types shared by every layer of the repair
// tracking data-access client: the error taxonomy, operation kinds and
// the result cache contract.
package repairdb

import "context"

// Op represents the kind of an operation. Values are bit flags and can
// be combined, e.g. OpUpdate|OpUpdateOne.
type Op uint

// Operation kinds.
const (
	OpQuery Op = 1 << iota
	OpCreate
	OpUpdate
	OpUpdateOne
	OpDelete
	OpDeleteOne
	OpRaw
)

// Is reports whether o matches the given operation.
func (o Op) Is(op Op) bool { return o&op != 0 }

// IsMutation reports whether o writes to the database.
func (o Op) IsMutation() bool {
	return o.Is(OpCreate | OpUpdate | OpUpdateOne | OpDelete | OpDeleteOne)
}

var opNames = [...]string{
	"OpQuery",
	"OpCreate",
	"OpUpdate",
	"OpUpdateOne",
	"OpDelete",
	"OpDeleteOne",
	"OpRaw",
}

// String returns the name of the first flag set in o.
func (o Op) String() string {
	for i, name := range opNames {
		if o&(1<<i) != 0 {
			return name
		}
	}
	return "Op(0)"
}

// Operation describes a pending request in terms the privacy layer
// and hooks understand.
type Operation interface {
	// Model returns the model name, e.g. "RepairRequest". Raw operations
	// return an empty string.
	Model() string
	// Action returns the client action, e.g. "findUniqueOrThrow".
	Action() string
	// Op returns the operation kind.
	Op() Op
}

// Policy decides whether an operation may run.
type Policy interface {
	EvalQuery(context.Context, Operation) error
	EvalMutation(context.Context, Operation) error
}
