// Package sqlgraph executes structured requests of the query package
// against an SQL database: it compiles predicates and projections into
// statements, loads relations level by level, applies nested writes and
// classifies constraint errors.
package sqlgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/dialect"
	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/schema"
)

// DefaultBatchSize is the maximum number of keys bound in one IN list.
const DefaultBatchSize = 500

// Engine runs query.Request values against a dialect.Driver.
// An Engine is safe for concurrent use.
type Engine struct {
	graph      *schema.Graph
	driver     dialect.Driver
	dialect    string
	classifier *classifier
	cache      repairdb.Cache
	cacheTTL   time.Duration
	log        *slog.Logger
	batchSize  int
	parallel   int
	globalOmit map[string]map[string]bool
	tx         *txState
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache caches the results of reads issued outside transactions.
func WithCache(c repairdb.Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache, e.cacheTTL = c, ttl
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithBatchSize sets the maximum number of keys bound in one IN list.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithParallelism sets how many relations of one level are loaded
// concurrently. Transactions always load sequentially.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallel = n
		}
	}
}

// WithGlobalOmit removes fields from the default projection of a model.
// A query can re-enable them with an explicit select or omit false.
func WithGlobalOmit(model string, fields ...string) Option {
	return func(e *Engine) {
		if e.globalOmit[model] == nil {
			e.globalOmit[model] = make(map[string]bool)
		}
		for _, f := range fields {
			e.globalOmit[model][f] = true
		}
	}
}

// NewEngine returns an Engine for the models of g.
func NewEngine(g *schema.Graph, drv dialect.Driver, opts ...Option) *Engine {
	e := &Engine{
		graph:      g,
		driver:     drv,
		dialect:    drv.Dialect(),
		classifier: newClassifier(g),
		log:        slog.Default(),
		batchSize:  DefaultBatchSize,
		parallel:   4,
		globalOmit: make(map[string]map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the model graph of the engine.
func (e *Engine) Graph() *schema.Graph { return e.graph }

// Dialect returns the SQL dialect of the engine.
func (e *Engine) Dialect() string { return e.dialect }

// InTx reports whether the engine is bound to a transaction.
func (e *Engine) InTx() bool { return e.tx != nil }

// Execute validates and runs req. Driver errors are translated into the
// repairdb error taxonomy.
func (e *Engine) Execute(ctx context.Context, req query.Request) (resp *query.Response, err error) {
	defer func() {
		err = e.classifier.classify(req.Model, string(req.Action), err)
	}()
	if err := query.Validate(e.graph, req); err != nil {
		return nil, err
	}
	if req.Action == query.ExecuteRaw || req.Action == query.QueryRaw {
		return e.raw(ctx, req)
	}
	m := e.graph.Model(req.Model)
	if e.cache != nil && e.tx == nil && req.Action.IsRead() {
		return e.cached(ctx, m, req)
	}
	return e.execute(ctx, m, req)
}

func (e *Engine) execute(ctx context.Context, m *schema.Model, req query.Request) (*query.Response, error) {
	switch args := req.Args.(type) {
	case *query.UniqueArgs:
		rec, err := e.findUnique(ctx, m, args)
		if err != nil {
			return nil, err
		}
		if rec == nil && req.Action.Throws() {
			return nil, repairdb.NewNotFoundError(m.Name, string(req.Action))
		}
		return &query.Response{Record: rec}, nil
	case *query.Query:
		if req.Action == query.FindMany {
			recs, err := e.findMany(ctx, m, args)
			if err != nil {
				return nil, err
			}
			return &query.Response{Records: recs}, nil
		}
		rec, err := e.findFirst(ctx, m, args)
		if err != nil {
			return nil, err
		}
		if rec == nil && req.Action.Throws() {
			return nil, repairdb.NewNotFoundError(m.Name, string(req.Action))
		}
		return &query.Response{Record: rec}, nil
	case *query.CreateArgs:
		rec, err := e.create(ctx, m, args)
		return &query.Response{Record: rec}, err
	case *query.CreateManyArgs:
		return e.createMany(ctx, m, args, req.Action == query.CreateManyAndReturn)
	case *query.UpdateArgs:
		rec, err := e.update(ctx, m, args)
		return &query.Response{Record: rec}, err
	case *query.UpdateManyArgs:
		return e.updateMany(ctx, m, args, req.Action == query.UpdateManyAndReturn)
	case *query.UpsertArgs:
		rec, err := e.upsert(ctx, m, args)
		return &query.Response{Record: rec}, err
	case *query.DeleteArgs:
		rec, err := e.delete(ctx, m, args)
		return &query.Response{Record: rec}, err
	case *query.DeleteManyArgs:
		n, err := e.deleteMany(ctx, m, args)
		return &query.Response{Count: n}, err
	case *query.CountArgs:
		n, err := e.count(ctx, m, args)
		return &query.Response{Count: n}, err
	case *query.AggregateArgs:
		res, err := e.aggregate(ctx, m, args)
		return &query.Response{Aggregate: res}, err
	case *query.GroupByArgs:
		groups, err := e.groupBy(ctx, m, args)
		return &query.Response{Groups: groups}, err
	}
	return nil, fmt.Errorf("sqlgraph: unexpected arguments %T", req.Args)
}

// cached serves a read from the cache, or runs it and stores the result.
func (e *Engine) cached(ctx context.Context, m *schema.Model, req query.Request) (*query.Response, error) {
	key, err := repairdb.NewCacheKey(m.Name, string(req.Action), req.Args)
	if err != nil {
		return e.execute(ctx, m, req)
	}
	if b, err := e.cache.Get(ctx, key.String()); err != nil {
		e.log.WarnContext(ctx, "cache get failed", "key", key.String(), "error", err)
	} else if b != nil {
		resp := new(query.Response)
		if err := repairdb.DecodeCacheValue(b, resp); err == nil {
			if err := normalizeResponse(m, resp); err == nil {
				return resp, nil
			}
		}
	}
	resp, err := e.execute(ctx, m, req)
	if err != nil {
		return nil, err
	}
	b, err := repairdb.EncodeCacheValue(resp)
	if err == nil {
		err = e.cache.Set(ctx, key.String(), b, e.cacheTTL)
	}
	if err != nil {
		e.log.WarnContext(ctx, "cache set failed", "key", key.String(), "error", err)
	}
	return resp, nil
}

func normalizeResponse(m *schema.Model, resp *query.Response) error {
	var err error
	if resp.Record, err = query.NormalizeRecord(m, resp.Record); err != nil {
		return err
	}
	for i := range resp.Records {
		if resp.Records[i], err = query.NormalizeRecord(m, resp.Records[i]); err != nil {
			return err
		}
	}
	if resp.Aggregate != nil {
		if err := normalizeAggregate(m, resp.Aggregate); err != nil {
			return err
		}
	}
	for i := range resp.Groups {
		if err := normalizeAggregate(m, &resp.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

// Tx is an Engine bound to a database transaction. Requests executed
// through it join the transaction.
type Tx struct {
	*Engine
	root *Engine
}

type txState struct {
	tx      dialect.Tx
	mu      sync.Mutex
	mutated map[string]bool
	done    bool
}

// txDriver runs the statements of an Engine inside a transaction.
type txDriver struct {
	dialect.ExecQuerier
	dialect string
}

func (d *txDriver) Tx(context.Context) (dialect.Tx, error) { return dialect.NopTx(d), nil }
func (d *txDriver) Close() error                           { return nil }
func (d *txDriver) Dialect() string                        { return d.dialect }

// BeginTx starts a transaction. Isolation levels and read-only mode are
// only honored by drivers implementing BeginTx.
func (e *Engine) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	if e.tx != nil {
		return nil, repairdb.ErrTxStarted
	}
	var (
		tx  dialect.Tx
		err error
	)
	switch drv := e.driver.(type) {
	case interface {
		BeginTx(context.Context, *sql.TxOptions) (dialect.Tx, error)
	}:
		tx, err = drv.BeginTx(ctx, opts)
	default:
		if opts != nil && (opts.Isolation != 0 || opts.ReadOnly) {
			return nil, fmt.Errorf("sqlgraph: driver %T does not support transaction options", e.driver)
		}
		tx, err = e.driver.Tx(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlgraph: starting a transaction: %w", err)
	}
	c := *e
	c.driver = &txDriver{ExecQuerier: tx, dialect: e.dialect}
	c.tx = &txState{tx: tx, mutated: make(map[string]bool)}
	c.parallel = 1
	return &Tx{Engine: &c, root: e}, nil
}

// Commit commits the transaction and drops the cached reads of every
// model it wrote to.
func (tx *Tx) Commit() error {
	st := tx.tx
	st.mu.Lock()
	if st.done {
		st.mu.Unlock()
		return sql.ErrTxDone
	}
	st.done = true
	mutated := make([]string, 0, len(st.mutated))
	for m := range st.mutated {
		mutated = append(mutated, m)
	}
	st.mu.Unlock()
	if err := st.tx.Commit(); err != nil {
		return err
	}
	tx.root.invalidate(context.Background(), mutated...)
	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction
// is a no-op.
func (tx *Tx) Rollback() error {
	st := tx.tx
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.done {
		return nil
	}
	st.done = true
	return st.tx.Rollback()
}

// Driver returns the transaction-bound driver.
func (tx *Tx) Driver() dialect.Tx { return tx.tx.tx }

// withTx runs fn in the current transaction, or in a new one that is
// committed when fn succeeds.
func (e *Engine) withTx(ctx context.Context, fn func(*Engine) error) error {
	if e.tx != nil {
		return fn(e)
	}
	tx, err := e.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx.Engine); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, &repairdb.RollbackError{Err: rerr})
		}
		return err
	}
	return tx.Commit()
}

// mutated records that the transaction wrote to m.
func (e *Engine) mutated(m *schema.Model) {
	if e.tx == nil {
		e.invalidate(context.Background(), m.Name)
		return
	}
	e.tx.mu.Lock()
	e.tx.mutated[m.Name] = true
	e.tx.mu.Unlock()
}

// invalidate drops the cached reads of the given models and of every
// model reachable from them, since cached reads embed related records.
func (e *Engine) invalidate(ctx context.Context, models ...string) {
	if e.cache == nil || len(models) == 0 {
		return
	}
	seen := make(map[string]bool)
	queue := append([]string(nil), models...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		m := e.graph.Model(name)
		if m == nil {
			continue
		}
		for _, r := range m.Relations {
			queue = append(queue, r.Target.Name)
		}
		if err := e.cache.DeletePrefix(ctx, repairdb.CachePrefix(name)); err != nil {
			e.log.WarnContext(ctx, "cache invalidation failed", "model", name, "error", err)
		}
	}
}

// invalidateAll drops every cached read. Raw statements may write to any table.
func (e *Engine) invalidateAll(ctx context.Context) {
	if e.tx != nil {
		e.tx.mu.Lock()
		for _, m := range e.graph.Models {
			e.tx.mutated[m.Name] = true
		}
		e.tx.mu.Unlock()
		return
	}
	if e.cache == nil {
		return
	}
	if err := e.cache.Clear(ctx); err != nil {
		e.log.WarnContext(ctx, "cache clear failed", "error", err)
	}
}
