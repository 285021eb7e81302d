// Package client is the typed data-access facade of the repair tracker.
// Every model has a client exposing the delegate operations, each of
// which returns a deferred *Op:
//
//	db, err := client.Open(ctx, client.WithDatasourceURL("file:repairs.db"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	u, err := db.User.FindUniqueOrThrow(query.UniqueArgs{
//	    Where: query.Unique{Field: user.FieldEmail, Value: "ada@example.com"},
//	}).Exec(ctx)
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/dialect/sql/sqlgraph"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/repairschema"
	"github.com/repairtrack/repairdb/schema"
)

// runtime is the state shared by the model clients of one Client.
// Transaction clients get a copy bound to the transaction engine.
type runtime struct {
	graph    *schema.Graph
	engine   Engine
	policies *policies
	events   *emitter
	format   ErrorFormat
	tx       TxOptions
	inTx     bool
}

// Client is the entry point to the models. A Client is safe for
// concurrent use.
type Client struct {
	clients
	rt      *runtime
	opts    *options
	driver  *sql.Driver
	stats   *sql.StatsDriver
	adapter string
}

type options struct {
	url         string
	adapter     Adapter
	engine      Engine
	logger      *slog.Logger
	logs        []LogDefinition
	format      ErrorFormat
	omit        map[string][]string
	cache       repairdb.Cache
	cacheTTL    time.Duration
	slowQuery   time.Duration
	tx          TxOptions
	batchSize   int
	parallelism int
	closers     []func() error
	err         error
}

// Option configures a Client.
type Option func(*options)

// WithDatasourceURL overrides the datasource URL. Without it the client
// reads REPAIRDB_DATABASE_URL.
func WithDatasourceURL(url string) Option {
	return func(o *options) { o.url = url }
}

// WithAdapter sets the storage adapter. By default it is inferred from
// the datasource URL.
func WithAdapter(a Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// WithEngine replaces the execution engine. The datasource and adapter
// are not used, and neither are query events or statistics.
func WithEngine(e Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithLogger sets the logger used for stdout log definitions.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLog sets the log definitions.
//
//	client.WithLog(
//	    client.LogDefinition{Level: client.EventQuery, Emit: client.EmitEvent},
//	    client.LogDefinition{Level: client.EventError, Emit: client.EmitStdout},
//	)
func WithLog(defs ...LogDefinition) Option {
	return func(o *options) { o.logs = defs }
}

// WithErrorFormat sets how request errors are rendered.
func WithErrorFormat(f ErrorFormat) Option {
	return func(o *options) { o.format = f }
}

// WithOmit omits fields of a model from every result unless a query
// selects them or sets omit to false.
func WithOmit(model string, fields ...string) Option {
	return func(o *options) {
		if o.omit == nil {
			o.omit = make(map[string][]string)
		}
		o.omit[model] = append(o.omit[model], fields...)
	}
}

// WithCache caches reads issued outside transactions.
func WithCache(c repairdb.Cache, ttl time.Duration) Option {
	return func(o *options) { o.cache, o.cacheTTL = c, ttl }
}

// WithSlowQuery sets the duration above which statements are reported
// as warnings.
func WithSlowQuery(d time.Duration) Option {
	return func(o *options) { o.slowQuery = d }
}

// WithTxOptions sets the defaults of batch and interactive transactions.
func WithTxOptions(tx TxOptions) Option {
	return func(o *options) { o.tx = tx }
}

// WithBatchSize bounds the number of keys loaded per relation query.
func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

// WithParallelism bounds how many relations of one level load concurrently.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// New returns a client without contacting the database.
func New(opts ...Option) (*Client, error) {
	o := &options{
		format:    ErrorFormatColorless,
		slowQuery: 100 * time.Millisecond,
		tx:        DefaultTxOptions(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, &repairdb.InitializationError{Adapter: "config", Err: o.err}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	g, err := repairschema.Graph()
	if err != nil {
		return nil, &repairdb.InitializationError{Adapter: "schema", Err: err}
	}
	for model, fields := range o.omit {
		m := g.Model(model)
		if m == nil {
			return nil, &repairdb.InitializationError{Adapter: "schema", Err: fmt.Errorf("omit: unknown model %q", model)}
		}
		for _, f := range fields {
			if _, ok := m.Field(f); !ok {
				return nil, &repairdb.InitializationError{Adapter: "schema", Err: fmt.Errorf("omit: unknown field %s.%s", model, f)}
			}
		}
	}
	c := &Client{opts: o}
	events := newEmitter(o.logger, o.logs)
	engine := o.engine
	if engine == nil {
		if engine, err = c.open(g, events); err != nil {
			return nil, err
		}
	}
	c.rt = &runtime{
		graph:    g,
		engine:   engine,
		policies: &policies{},
		events:   events,
		format:   o.format,
		tx:       o.tx,
	}
	c.clients = newClients(c.rt)
	return c, nil
}

func (c *Client) open(g *schema.Graph, events *emitter) (Engine, error) {
	o := c.opts
	url := o.url
	if url == "" {
		url = os.Getenv("REPAIRDB_DATABASE_URL")
	}
	if url == "" && o.adapter == nil {
		return nil, &repairdb.InitializationError{Adapter: "none", Err: fmt.Errorf("no datasource URL configured")}
	}
	adapter := o.adapter
	if adapter == nil {
		a, err := adapterFor(url)
		if err != nil {
			return nil, &repairdb.InitializationError{Adapter: "none", Err: err}
		}
		adapter = a
	}
	drv, err := adapter.Open(url)
	if err != nil {
		return nil, &repairdb.InitializationError{Adapter: adapter.Name(), Err: err}
	}
	c.driver, c.adapter = drv, adapter.Name()
	c.stats = sql.NewStatsDriver(drv,
		sql.WithSlowThreshold(o.slowQuery),
		sql.WithSlowQueryHook(events.slowHook),
		sql.WithQueryHook(events.queryHook),
	)
	eopts := []sqlgraph.Option{
		sqlgraph.WithLogger(o.logger),
		sqlgraph.WithBatchSize(o.batchSize),
		sqlgraph.WithParallelism(o.parallelism),
	}
	if o.cache != nil {
		eopts = append(eopts, sqlgraph.WithCache(o.cache, o.cacheTTL))
	}
	for model, fields := range o.omit {
		eopts = append(eopts, sqlgraph.WithGlobalOmit(model, fields...))
	}
	return SQLEngine{sqlgraph.NewEngine(g, c.stats, eopts...)}, nil
}

// Open returns a client and verifies the database is reachable.
func Open(ctx context.Context, opts ...Option) (*Client, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Connect verifies the connection. Clients built with New connect
// lazily on the first request otherwise.
func (c *Client) Connect(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	if err := c.driver.Ping(ctx); err != nil {
		return &repairdb.InitializationError{Adapter: c.adapter, Err: err}
	}
	c.rt.events.infof(ctx, "connected to %s datasource", c.adapter)
	return nil
}

// Close releases the connection pool. Closing a transaction client is
// a no-op.
func (c *Client) Close() error {
	if c.rt.inTx {
		return nil
	}
	var errs []error
	for _, fn := range c.opts.closers {
		errs = append(errs, fn())
	}
	if c.driver != nil {
		c.rt.events.infof(context.Background(), "disconnecting from %s datasource", c.adapter)
		errs = append(errs, c.driver.Close())
	}
	return errors.Join(errs...)
}

// Driver returns the SQL driver, or nil for clients built WithEngine.
// It is meant for migrations and tooling.
func (c *Client) Driver() *sql.Driver { return c.driver }

// Graph returns the resolved models.
func (c *Client) Graph() *schema.Graph { return c.rt.graph }

// Policy registers a privacy policy evaluated before every request on
// model, in registration order.
//
//	db.Policy("Printer", privacy.Policy{
//	    Query: privacy.QueryPolicy{privacy.HasRole("Admin"), privacy.OwnerFilter("ownerId")},
//	})
func (c *Client) Policy(model string, p repairdb.Policy) {
	c.rt.policies.add(model, p)
}

// On registers a callback for events of type t. Callbacks only receive
// events of levels configured with EmitEvent.
func (c *Client) On(t EventType, fn func(Event)) {
	c.rt.events.on(t, fn)
}

// SetLog replaces the log definitions at runtime.
func (c *Client) SetLog(defs ...LogDefinition) {
	c.rt.events.setLog(defs)
}

// Stats returns the query statistics collected since the client was
// built. Clients built WithEngine report zero values.
func (c *Client) Stats() sql.StatsSnapshot {
	if c.stats == nil {
		return sql.StatsSnapshot{}
	}
	return c.stats.QueryStats().Stats()
}

// ExecuteRaw runs a parameterized statement and returns the number of
// affected rows.
func (c *Client) ExecuteRaw(r sql.Raw) *Op[int64] {
	return newOp(c.rt, query.Request{Action: query.ExecuteRaw, Args: r}, decodeCount)
}

// ExecuteRawUnsafe runs a statement built from a plain string. The
// caller is responsible for escaping anything interpolated into it.
func (c *Client) ExecuteRawUnsafe(stmt string, args ...any) *Op[int64] {
	return c.ExecuteRaw(sql.NewRaw(stmt, args...))
}

// QueryRaw runs a parameterized query and returns untyped rows.
func (c *Client) QueryRaw(r sql.Raw) *Op[[]query.Record] {
	return newOp(c.rt, query.Request{Action: query.QueryRaw, Args: r}, decodeRecords)
}

// QueryRawUnsafe runs a query built from a plain string. The caller is
// responsible for escaping anything interpolated into it.
func (c *Client) QueryRawUnsafe(stmt string, args ...any) *Op[[]query.Record] {
	return c.QueryRaw(sql.NewRaw(stmt, args...))
}
