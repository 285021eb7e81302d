package query

import (
	"fmt"

	"github.com/repairtrack/repairdb"
)

// Action names an operation of the delegate facade.
type Action string

// Actions.
const (
	FindUnique          Action = "findUnique"
	FindUniqueOrThrow   Action = "findUniqueOrThrow"
	FindFirst           Action = "findFirst"
	FindFirstOrThrow    Action = "findFirstOrThrow"
	FindMany            Action = "findMany"
	CreateOne           Action = "createOne"
	CreateMany          Action = "createMany"
	CreateManyAndReturn Action = "createManyAndReturn"
	UpdateOne           Action = "updateOne"
	UpdateMany          Action = "updateMany"
	UpdateManyAndReturn Action = "updateManyAndReturn"
	UpsertOne           Action = "upsertOne"
	DeleteOne           Action = "deleteOne"
	DeleteMany          Action = "deleteMany"
	Count               Action = "count"
	Aggregate           Action = "aggregate"
	GroupBy             Action = "groupBy"
	ExecuteRaw          Action = "executeRaw"
	QueryRaw            Action = "queryRaw"
)

var actionOps = map[Action]repairdb.Op{
	FindUnique:          repairdb.OpQuery,
	FindUniqueOrThrow:   repairdb.OpQuery,
	FindFirst:           repairdb.OpQuery,
	FindFirstOrThrow:    repairdb.OpQuery,
	FindMany:            repairdb.OpQuery,
	Count:               repairdb.OpQuery,
	Aggregate:           repairdb.OpQuery,
	GroupBy:             repairdb.OpQuery,
	CreateOne:           repairdb.OpCreate,
	CreateMany:          repairdb.OpCreate,
	CreateManyAndReturn: repairdb.OpCreate,
	UpdateOne:           repairdb.OpUpdateOne,
	UpdateMany:          repairdb.OpUpdate,
	UpdateManyAndReturn: repairdb.OpUpdate,
	UpsertOne:           repairdb.OpCreate | repairdb.OpUpdateOne,
	DeleteOne:           repairdb.OpDeleteOne,
	DeleteMany:          repairdb.OpDelete,
	ExecuteRaw:          repairdb.OpRaw,
	QueryRaw:            repairdb.OpRaw,
}

// Op returns the operation kind of the action.
func (a Action) Op() repairdb.Op { return actionOps[a] }

// IsRead reports whether the action never writes.
func (a Action) IsRead() bool { return a.Op() == repairdb.OpQuery }

// Throws reports whether the action fails with P2025 on an empty result.
func (a Action) Throws() bool { return a == FindUniqueOrThrow || a == FindFirstOrThrow }

// Request is the structured request handed to the engine.
type Request struct {
	Model  string
	Action Action
	// Args is one of the *Args types matching the action, or *Query for
	// findFirst, findFirstOrThrow and findMany.
	Args any
}

// String returns the invocation in the client notation, e.g.
// "client.user.findUnique()".
func (r Request) String() string {
	if r.Model == "" {
		return fmt.Sprintf("client.$%s()", r.Action)
	}
	return fmt.Sprintf("client.%s.%s()", lowerFirst(r.Model), r.Action)
}

// Response is the engine result of a request. Exactly one part is set,
// depending on the action.
type Response struct {
	// Record is the result of single-record actions, nil when nothing matched.
	Record Record `msgpack:"record,omitempty"`
	// Records is the result of findMany and the AndReturn variants.
	Records []Record `msgpack:"records,omitempty"`
	// Count is the result of count, or the number of affected rows.
	Count     int64             `msgpack:"count,omitempty"`
	Aggregate *AggregateResult  `msgpack:"aggregate,omitempty"`
	Groups    []AggregateResult `msgpack:"groups,omitempty"`
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
