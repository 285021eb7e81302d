// Package schema creates and upgrades the database tables of a model
// graph with atlas. Changes that may lose data are refused unless
// explicitly allowed.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/repairtrack/repairdb/dialect"
	"github.com/repairtrack/repairdb/dialect/sql"
	graph "github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// Differ computes the changes turning the current schema into the desired one.
type Differ interface {
	Diff(current, desired *schema.Schema) ([]schema.Change, error)
}

// DiffFunc allows using an ordinary function as a Differ.
type DiffFunc func(current, desired *schema.Schema) ([]schema.Change, error)

// Diff calls f(current, desired).
func (f DiffFunc) Diff(current, desired *schema.Schema) ([]schema.Change, error) {
	return f(current, desired)
}

// DiffHook wraps the Differ of a migration.
type DiffHook func(Differ) Differ

// MigrateOption configures a Migrate.
type MigrateOption func(*Migrate)

// WithSchemaName sets the database schema to inspect and migrate. The
// default is the current schema of the connection.
func WithSchemaName(name string) MigrateOption {
	return func(m *Migrate) { m.schemaName = name }
}

// WithDiffHook adds a hook wrapping the computation of changes.
func WithDiffHook(hooks ...DiffHook) MigrateOption {
	return func(m *Migrate) { m.hooks = append(m.hooks, hooks...) }
}

// WithValidateOptions relaxes the checks applied to the computed changes.
func WithValidateOptions(opts ...ValidateOption) MigrateOption {
	return func(m *Migrate) { m.validate = append(m.validate, opts...) }
}

// WithLogger sets the logger receiving migration warnings.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(m *Migrate) {
		if l != nil {
			m.log = l
		}
	}
}

// Migrate runs the migration of a model graph on one database.
type Migrate struct {
	atlas      migrate.Driver
	dialect    string
	graph      *graph.Graph
	schemaName string
	hooks      []DiffHook
	validate   []ValidateOption
	log        *slog.Logger
}

// NewMigrate returns a Migrate for the models of g on the database of drv.
func NewMigrate(drv *sql.Driver, g *graph.Graph, opts ...MigrateOption) (*Migrate, error) {
	m := &Migrate{dialect: drv.Dialect(), graph: g, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	var err error
	switch m.dialect {
	case dialect.SQLite:
		m.atlas, err = sqlite.Open(drv.DB())
	case dialect.Postgres:
		m.atlas, err = postgres.Open(drv.DB())
	case dialect.MySQL:
		m.atlas, err = mysql.Open(drv.DB())
	default:
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", m.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: opening atlas driver: %w", err)
	}
	return m, nil
}

// BreakingChangeError is returned when a migration would lose data.
type BreakingChangeError struct {
	Result *ValidationResult
}

func (e *BreakingChangeError) Error() string {
	return "dialect/sql/schema: refusing breaking changes:\n" + e.Result.String()
}

// IsBreakingChange reports whether err was caused by a refused migration.
func IsBreakingChange(err error) bool {
	var e *BreakingChangeError
	return errors.As(err, &e)
}

// Create creates the missing tables and upgrades the existing ones.
func (m *Migrate) Create(ctx context.Context) error {
	changes, err := m.changes(ctx)
	if err != nil || len(changes) == 0 {
		return err
	}
	if err := m.atlas.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("dialect/sql/schema: applying changes: %w", err)
	}
	return nil
}

// Plan returns the statements Create would run, without running them.
func (m *Migrate) Plan(ctx context.Context) (*migrate.Plan, error) {
	changes, err := m.changes(ctx)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return &migrate.Plan{Name: "repairdb"}, nil
	}
	return m.atlas.PlanChanges(ctx, "repairdb", changes)
}

// changes computes and validates the changes of a migration.
func (m *Migrate) changes(ctx context.Context) ([]schema.Change, error) {
	tables := Tables(m.graph, m.dialect)
	if res := ValidateTables(tables); res.HasErrors() {
		return nil, fmt.Errorf("dialect/sql/schema: invalid tables:\n%s", res)
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	current, err := m.atlas.InspectSchema(ctx, m.schemaName, &schema.InspectOptions{Tables: names})
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: inspecting schema: %w", err)
	}
	desired := schema.New(current.Name).AddTables(tables...)
	var differ Differ = DiffFunc(func(current, desired *schema.Schema) ([]schema.Change, error) {
		return m.atlas.SchemaDiff(current, desired)
	})
	for i := len(m.hooks) - 1; i >= 0; i-- {
		differ = m.hooks[i](differ)
	}
	changes, err := differ.Diff(current, desired)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: computing changes: %w", err)
	}
	changes = tableChanges(changes)
	res := ValidateChanges(changes, m.validate...)
	for _, w := range res.Warnings {
		m.log.WarnContext(ctx, "migration warning", "table", w.Table, "column", w.Column, "message", w.Message)
	}
	if res.HasErrors() {
		return nil, &BreakingChangeError{Result: res}
	}
	return changes, nil
}

// tableChanges keeps the changes of tables, dropping schema level
// attribute changes the graph does not describe.
func tableChanges(changes []schema.Change) []schema.Change {
	out := changes[:0]
	for _, c := range changes {
		switch c.(type) {
		case *schema.AddTable, *schema.DropTable, *schema.ModifyTable:
			out = append(out, c)
		}
	}
	return out
}

// Tables returns the desired tables of the models of g on dialect d.
func Tables(g *graph.Graph, d string) []*schema.Table {
	tables := make(map[*graph.Model]*schema.Table, len(g.Models))
	columns := make(map[*graph.Scalar]*schema.Column)
	out := make([]*schema.Table, 0, len(g.Models))
	for _, m := range g.Models {
		t := schema.NewTable(m.Table)
		for _, f := range m.Fields {
			c := schema.NewColumn(f.Column).
				SetType(columnType(f, d)).
				SetNull(f.Optional)
			if f.Comment != "" && d != dialect.SQLite {
				c.SetComment(f.Comment)
			}
			if f == m.ID {
				c.AddAttrs(autoIncrement(d))
			}
			columns[f] = c
			t.AddColumns(c)
		}
		t.SetPrimaryKey(schema.NewPrimaryKey(columns[m.ID]))
		for _, f := range m.Fields {
			if f.Unique && f != m.ID {
				t.AddIndexes(schema.NewUniqueIndex(f.UniqueKeyName()).AddColumns(columns[f]))
			}
		}
		tables[m] = t
		out = append(out, t)
	}
	for _, m := range g.Models {
		for _, rel := range m.Relations {
			if !rel.Owner {
				continue
			}
			fk := schema.NewForeignKey(rel.FK.ForeignKeyName()).
				AddColumns(columns[rel.FK]).
				SetRefTable(tables[rel.Target]).
				AddRefColumns(columns[rel.Target.ID]).
				SetOnDelete(schema.NoAction).
				SetOnUpdate(schema.Cascade)
			tables[m].AddForeignKeys(fk)
		}
	}
	return out
}

func autoIncrement(d string) schema.Attr {
	switch d {
	case dialect.Postgres:
		return &postgres.Identity{Generation: "BY DEFAULT"}
	case dialect.MySQL:
		return &mysql.AutoIncrement{}
	}
	return &sqlite.AutoIncrement{}
}

// columnType returns the column type of f on dialect d.
func columnType(f *graph.Scalar, d string) schema.Type {
	switch f.Type {
	case field.TypeInt:
		if d == dialect.SQLite {
			return &schema.IntegerType{T: "integer"}
		}
		return &schema.IntegerType{T: "bigint"}
	case field.TypeFloat:
		switch d {
		case dialect.SQLite:
			return &schema.FloatType{T: "real"}
		case dialect.Postgres:
			return &schema.FloatType{T: "double precision"}
		}
		return &schema.FloatType{T: "double"}
	case field.TypeBool:
		if d == dialect.MySQL {
			return &schema.BoolType{T: "bool"}
		}
		return &schema.BoolType{T: "boolean"}
	case field.TypeTime:
		switch d {
		case dialect.SQLite:
			return &schema.TimeType{T: "datetime"}
		case dialect.Postgres:
			return &schema.TimeType{T: "timestamp with time zone"}
		}
		p := 6
		return &schema.TimeType{T: "datetime", Precision: &p}
	}
	switch {
	case d == dialect.SQLite:
		return &schema.StringType{T: "text"}
	case f.Size == 0 && d == dialect.MySQL:
		return &schema.StringType{T: "longtext"}
	case f.Size == 0:
		return &schema.StringType{T: "text"}
	case d == dialect.Postgres:
		return &schema.StringType{T: "character varying", Size: f.Size}
	}
	return &schema.StringType{T: "varchar", Size: f.Size}
}
