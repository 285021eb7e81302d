package client

import (
	"context"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/dialect/sql/sqlgraph"
	"github.com/repairtrack/repairdb/query"
)

// Engine executes structured requests. The default engine is
// sqlgraph.Engine over the configured adapter.
type Engine interface {
	Execute(context.Context, query.Request) (*query.Response, error)
	// Begin starts a transaction. Engines already bound to a transaction
	// return repairdb.ErrTxStarted.
	Begin(context.Context, *sql.TxOptions) (TxEngine, error)
}

// TxEngine is an Engine bound to a transaction.
type TxEngine interface {
	Engine
	Commit() error
	Rollback() error
}

// SQLEngine adapts a sqlgraph.Engine to the Engine interface.
type SQLEngine struct {
	*sqlgraph.Engine
}

// Begin implements Engine.
func (e SQLEngine) Begin(ctx context.Context, opts *sql.TxOptions) (TxEngine, error) {
	tx, err := e.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx}, nil
}

type sqlTx struct {
	*sqlgraph.Tx
}

func (sqlTx) Begin(context.Context, *sql.TxOptions) (TxEngine, error) {
	return nil, repairdb.ErrTxStarted
}

var (
	_ Engine   = SQLEngine{}
	_ TxEngine = sqlTx{}
)
