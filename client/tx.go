package client

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/dialect/sql"
)

// TxOptions configures a transaction.
type TxOptions struct {
	// IsolationLevel is passed to the database; zero means its default.
	IsolationLevel sql.IsolationLevel
	// MaxWait bounds the time spent acquiring the transaction.
	MaxWait time.Duration
	// Timeout bounds the time the transaction may stay open.
	Timeout time.Duration
}

// DefaultTxOptions returns maxWait 2s and timeout 5s.
func DefaultTxOptions() TxOptions {
	return TxOptions{MaxWait: 2 * time.Second, Timeout: 5 * time.Second}
}

// isolationLevels maps configuration names to isolation levels.
var isolationLevels = map[string]sql.IsolationLevel{
	"ReadUncommitted": stdsql.LevelReadUncommitted,
	"ReadCommitted":   stdsql.LevelReadCommitted,
	"RepeatableRead":  stdsql.LevelRepeatableRead,
	"Snapshot":        stdsql.LevelSnapshot,
	"Serializable":    stdsql.LevelSerializable,
}

// TxOption overrides a transaction option for one call.
type TxOption func(*TxOptions)

// WithIsolationLevel sets the isolation level of one transaction.
func WithIsolationLevel(l sql.IsolationLevel) TxOption {
	return func(o *TxOptions) { o.IsolationLevel = l }
}

// WithMaxWait sets how long one transaction may wait to start.
func WithMaxWait(d time.Duration) TxOption {
	return func(o *TxOptions) { o.MaxWait = d }
}

// WithTimeout sets how long one transaction may stay open.
func WithTimeout(d time.Duration) TxOption {
	return func(o *TxOptions) { o.Timeout = d }
}

// Transaction runs ops in order inside one transaction and returns their
// results in the same order. If any op fails, none of them is committed.
// Invalid ops are reported before the transaction starts.
//
//	res, err := db.Transaction(ctx, []client.Runnable{
//	    db.RepairRequest.Create(...),
//	    db.Shipping.Create(...),
//	})
//	req := res[0].(*client.RepairRequest)
func (c *Client) Transaction(ctx context.Context, ops []Runnable, opts ...TxOption) ([]any, error) {
	for _, op := range ops {
		if err := op.Err(); err != nil {
			return nil, err
		}
	}
	results := make([]any, len(ops))
	err := c.transact(ctx, opts, func(ctx context.Context, rt *runtime) error {
		for i, op := range ops {
			v, err := op.run(ctx, rt)
			if err != nil {
				return c.rt.format.format(op.Request().String(), err)
			}
			results[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Tx runs fn with a client whose operations join one transaction. The
// transaction commits when fn returns nil and rolls back when it returns
// an error or panics. Exceeding the timeout rolls it back and fails with
// a P2028 error.
//
//	err := db.Tx(ctx, func(ctx context.Context, tx *client.Client) error {
//	    req, err := tx.RepairRequest.Update(...).Exec(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = tx.Note.Create(...).Exec(ctx)
//	    return err
//	})
func (c *Client) Tx(ctx context.Context, fn func(context.Context, *Client) error, opts ...TxOption) error {
	return c.transact(ctx, opts, func(ctx context.Context, rt *runtime) error {
		return fn(ctx, &Client{clients: newClients(rt), rt: rt, opts: c.opts, adapter: c.adapter})
	})
}

// txState guards the end of a transaction against its timeout.
type txState struct {
	mu       sync.Mutex
	done     bool
	timedOut bool
}

// finish marks the transaction finished. It reports false when the
// timeout fired first.
func (s *txState) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timedOut {
		return false
	}
	s.done = true
	return true
}

func (s *txState) expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.timedOut = true
	return true
}

func (c *Client) transact(ctx context.Context, opts []TxOption, fn func(context.Context, *runtime) error) (err error) {
	if c.rt.inTx {
		return repairdb.ErrTxStarted
	}
	o := c.rt.tx
	for _, opt := range opts {
		opt(&o)
	}
	// The transaction lives as long as txCtx; cancelling it rolls back.
	txCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	tx, err := c.begin(txCtx, cancel, o)
	if err != nil {
		return err
	}
	st := &txState{}
	if o.Timeout > 0 {
		timer := time.AfterFunc(o.Timeout, func() {
			if st.expire() {
				cancel()
			}
		})
		defer timer.Stop()
	}
	timeout := func() error {
		return repairdb.NewTimeoutError(fmt.Sprintf("transaction already closed: the timeout of %s was exceeded", o.Timeout), context.Canceled)
	}
	rt := *c.rt
	rt.engine, rt.inTx = tx, true
	defer func() {
		if v := recover(); v != nil {
			st.finish()
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(txCtx, &rt); err != nil {
		expired := !st.finish()
		rerr := tx.Rollback()
		if expired {
			return timeout()
		}
		c.rt.events.infof(ctx, "transaction rolled back: %v", err)
		if rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, &repairdb.RollbackError{Err: rerr})
		}
		return err
	}
	if !st.finish() {
		_ = tx.Rollback()
		return timeout()
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("client: commit: %w", err)
	}
	return nil
}

// begin starts a transaction within MaxWait. A transaction acquired
// after the deadline is rolled back.
func (c *Client) begin(ctx context.Context, cancel context.CancelFunc, o TxOptions) (TxEngine, error) {
	var opts *sql.TxOptions
	if o.IsolationLevel != 0 {
		opts = &sql.TxOptions{Isolation: o.IsolationLevel}
	}
	if o.MaxWait <= 0 {
		return c.rt.engine.Begin(ctx, opts)
	}
	type result struct {
		tx  TxEngine
		err error
	}
	ch := make(chan result, 1)
	go func() {
		tx, err := c.rt.engine.Begin(ctx, opts)
		ch <- result{tx, err}
	}()
	timer := time.NewTimer(o.MaxWait)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.tx, r.err
	case <-timer.C:
		cancel()
		go func() {
			if r := <-ch; r.err == nil {
				_ = r.tx.Rollback()
			}
		}()
		return nil, repairdb.NewTimeoutError(fmt.Sprintf("unable to start a transaction in the given time (maxWait %s)", o.MaxWait), context.DeadlineExceeded)
	}
}
