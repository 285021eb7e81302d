package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/repairtrack/repairdb/dialect"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing queries.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of queries exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of query errors.
	Errors atomic.Int64
	// Transactions is the number of started transactions.
	Transactions atomic.Int64
	// Rollbacks is the number of rolled back transactions.
	Rollbacks atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
		Transactions:  s.Transactions.Load(),
		Rollbacks:     s.Rollbacks.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
	s.Transactions.Store(0)
	s.Rollbacks.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64         `json:"totalQueries" yaml:"totalQueries"`
	TotalExecs    int64         `json:"totalExecs" yaml:"totalExecs"`
	TotalDuration time.Duration `json:"totalDuration" yaml:"totalDuration"`
	SlowQueries   int64         `json:"slowQueries" yaml:"slowQueries"`
	Errors        int64         `json:"errors" yaml:"errors"`
	Transactions  int64         `json:"transactions" yaml:"transactions"`
	Rollbacks     int64         `json:"rollbacks" yaml:"rollbacks"`
}

// AvgQueryDuration returns the average query duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d tx=%d rollbacks=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors, s.Transactions, s.Rollbacks,
	)
}

// QueryEvent describes one statement sent to the database. Transaction
// boundaries are reported as events with the statements BEGIN, COMMIT
// and ROLLBACK.
type QueryEvent struct {
	Query    string
	Args     []any
	Start    time.Time
	Duration time.Duration
	Err      error
	// Exec is set for statements that do not return rows.
	Exec bool
	// TxID identifies the transaction the statement ran in, if any.
	TxID string
}

// Target returns "transaction" for statements that ran inside a
// transaction and "client" otherwise.
func (e QueryEvent) Target() string {
	if e.TxID != "" {
		return "transaction"
	}
	return "client"
}

// QueryHook is called after every statement.
type QueryHook func(context.Context, QueryEvent)

// SlowQueryHook is a function called when a slow query is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver wraps a dialect.Driver with query statistics collection and
// query events.
type StatsDriver struct {
	dialect.Driver
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	hooks         []QueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow query detection.
// Queries taking longer than this duration will be counted as slow queries.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow queries.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow queries with the given logger, or the
// default logger if l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		l.WarnContext(ctx, "slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// WithQueryHook registers a hook called after every statement.
func WithQueryHook(hook QueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.hooks = append(s.hooks, hook)
	}
}

// NewStatsDriver wraps a driver with statistics collection.
//
//	drv, _ := sql.Open("sqlite", dsn)
//	sd := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	fmt.Println(sd.QueryStats().Stats())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow query threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow query threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// AddQueryHook registers a hook after construction.
func (d *StatsDriver) AddQueryHook(hook QueryHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, hook)
}

// Query executes a query and records statistics.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.record(ctx, QueryEvent{Query: query, Start: start, Err: err}, args)
	return err
}

// Exec executes a statement and records statistics.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.record(ctx, QueryEvent{Query: query, Start: start, Err: err, Exec: true}, args)
	return err
}

func (d *StatsDriver) record(ctx context.Context, e QueryEvent, args any) {
	e.Duration = time.Since(e.Start)
	e.Args, _ = args.([]any)
	if e.Exec {
		d.stats.TotalExecs.Add(1)
	} else {
		d.stats.TotalQueries.Add(1)
	}
	d.stats.TotalDuration.Add(int64(e.Duration))
	if e.Err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	slow := d.slowHook
	hooks := d.hooks
	d.mu.RUnlock()

	if e.Duration > threshold {
		d.stats.SlowQueries.Add(1)
		if slow != nil {
			slow(ctx, e.Query, e.Args, e.Duration)
		}
	}
	for _, h := range hooks {
		h(ctx, e)
	}
}

// Tx starts a transaction that also records statistics.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options. Drivers that do not support
// options are started with their defaults when opts is nil.
func (d *StatsDriver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	var (
		tx    dialect.Tx
		err   error
		start = time.Now()
	)
	switch drv := d.Driver.(type) {
	case interface {
		BeginTx(context.Context, *TxOptions) (dialect.Tx, error)
	}:
		tx, err = drv.BeginTx(ctx, opts)
	default:
		if opts != nil && (opts.Isolation != 0 || opts.ReadOnly) {
			return nil, fmt.Errorf("dialect/sql: driver %T does not support transaction options", d.Driver)
		}
		tx, err = d.Driver.Tx(ctx)
	}
	id := uuid.NewString()
	d.record(ctx, QueryEvent{Query: "BEGIN", Start: start, Err: err, Exec: true, TxID: id}, nil)
	if err != nil {
		return nil, err
	}
	d.stats.Transactions.Add(1)
	return &StatsTx{Tx: tx, driver: d, id: id}, nil
}

// StatsTx wraps a transaction with statistics collection.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
	id     string
}

// ID returns the transaction identifier reported in query events.
func (tx *StatsTx) ID() string { return tx.id }

// Query executes a query within the transaction and records statistics.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.driver.record(ctx, QueryEvent{Query: query, Start: start, Err: err, TxID: tx.id}, args)
	return err
}

// Exec executes a statement within the transaction and records statistics.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.driver.record(ctx, QueryEvent{Query: query, Start: start, Err: err, Exec: true, TxID: tx.id}, args)
	return err
}

// Commit commits the transaction.
func (tx *StatsTx) Commit() error {
	start := time.Now()
	err := tx.Tx.Commit()
	tx.driver.record(context.Background(), QueryEvent{Query: "COMMIT", Start: start, Err: err, Exec: true, TxID: tx.id}, nil)
	return err
}

// Rollback rolls back the transaction.
func (tx *StatsTx) Rollback() error {
	start := time.Now()
	err := tx.Tx.Rollback()
	tx.driver.stats.Rollbacks.Add(1)
	tx.driver.record(context.Background(), QueryEvent{Query: "ROLLBACK", Start: start, Err: err, Exec: true, TxID: tx.id}, nil)
	return err
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
)

// OpenWithStats opens a database connection with statistics collection enabled.
//
//	drv, stats, err := sql.OpenWithStats("pgx", dsn,
//	    sql.WithSlowThreshold(100*time.Millisecond),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go func() {
//	    for range time.Tick(time.Minute) {
//	        log.Printf("query stats: %s", stats.Stats())
//	    }
//	}()
func OpenWithStats(driverName, source string, opts ...StatsOption) (*StatsDriver, *QueryStats, error) {
	drv, err := Open(driverName, source)
	if err != nil {
		return nil, nil, err
	}
	sd := NewStatsDriver(drv, opts...)
	return sd, sd.QueryStats(), nil
}
