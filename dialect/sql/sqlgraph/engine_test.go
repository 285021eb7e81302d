package sqlgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/dialect"
	"github.com/repairtrack/repairdb/dialect/sql"
	sqlschema "github.com/repairtrack/repairdb/dialect/sql/schema"
	"github.com/repairtrack/repairdb/query"
	"github.com/repairtrack/repairdb/repairschema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// fixture is an engine on a migrated in-memory database holding one
// repair request and the records it depends on.
type fixture struct {
	t       *testing.T
	e       *Engine
	drv     *sql.Driver
	role    int64
	user    int64
	printer int64
	status  int64
	request int64
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	drv, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name))
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	g, err := repairschema.Graph()
	require.NoError(t, err)
	m, err := sqlschema.NewMigrate(drv, g)
	require.NoError(t, err)
	require.NoError(t, m.Create(ctx))

	f := &fixture{t: t, e: NewEngine(g, drv, opts...), drv: drv}
	f.role = f.create("Role", query.Checked{"name": "Technician"})
	f.user = f.create("User", query.Checked{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "s3cret",
		"role":     query.ConnectNested(byID(f.role)),
	})
	f.printer = f.create("Printer", query.Checked{
		"model":        "LaserJet 4000",
		"serialNumber": "SN-1",
		"owner":        query.ConnectNested(byID(f.user)),
	})
	f.status = f.create("RepairStatus", query.Checked{"name": "Pending"})
	f.request = f.create("RepairRequest", query.Checked{
		"description": "Paper jam",
		"printer":     query.ConnectNested(byID(f.printer)),
		"status":      query.ConnectNested(byID(f.status)),
	})
	return f
}

func byID(id int64) query.Unique { return query.Unique{Field: "id", Value: id} }

func (f *fixture) try(model string, action query.Action, args any) (*query.Response, error) {
	return f.e.Execute(context.Background(), query.Request{Model: model, Action: action, Args: args})
}

func (f *fixture) exec(model string, action query.Action, args any) *query.Response {
	f.t.Helper()
	resp, err := f.try(model, action, args)
	require.NoError(f.t, err)
	return resp
}

func (f *fixture) create(model string, d query.Data) int64 {
	f.t.Helper()
	return f.exec(model, query.CreateOne, &query.CreateArgs{Data: d}).Record.Int("id")
}

func (f *fixture) count(model string, where ...query.Predicate) int64 {
	f.t.Helper()
	return f.exec(model, query.Count, &query.CountArgs{Where: where}).Count
}

func (f *fixture) part(request int64, name string, qty int, price float64) int64 {
	f.t.Helper()
	return f.create("RepairPart", query.Unchecked{
		"repairRequestId": request,
		"partName":        name,
		"quantity":        qty,
		"price":           price,
	})
}

func names(recs []query.Record, field string) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.String(field)
	}
	return out
}

func knownCode(t *testing.T, err error) string {
	t.Helper()
	var known *repairdb.KnownRequestError
	require.True(t, errors.As(err, &known), "unexpected error: %v", err)
	return known.Code
}

func TestEngine_FindUnique(t *testing.T) {
	f := newFixture(t)
	resp := f.exec("User", query.FindUnique, &query.UniqueArgs{Where: query.Unique{Field: "email", Value: "ada@example.com"}})
	require.NotNil(t, resp.Record)
	assert.Equal(t, "Ada", resp.Record.String("name"))
	assert.Equal(t, f.role, resp.Record.Int("roleId"))

	resp = f.exec("User", query.FindUnique, &query.UniqueArgs{Where: query.Unique{Field: "email", Value: "nobody@example.com"}})
	assert.Nil(t, resp.Record)

	_, err := f.try("User", query.FindUniqueOrThrow, &query.UniqueArgs{Where: query.Unique{Field: "email", Value: "nobody@example.com"}})
	require.Error(t, err)
	assert.True(t, repairdb.IsNotFound(err))
	assert.Equal(t, repairdb.CodeRecordNotFound, knownCode(t, err))

	_, err = f.try("User", query.FindFirstOrThrow, &query.Query{Where: []query.Predicate{query.FieldEQ("name", "Grace")}})
	assert.True(t, repairdb.IsNotFound(err))

	// Non unique fields cannot identify a record.
	_, err = f.try("User", query.FindUnique, &query.UniqueArgs{Where: query.Unique{Field: "name", Value: "Ada"}})
	assert.True(t, repairdb.IsValidationError(err))
}

func TestEngine_CreateManySkipDuplicates(t *testing.T) {
	f := newFixture(t)
	resp := f.exec("Role", query.CreateMany, &query.CreateManyArgs{
		Data:           []query.Data{query.Checked{"name": "Technician"}, query.Checked{"name": "Admin"}},
		SkipDuplicates: true,
	})
	assert.EqualValues(t, 1, resp.Count)
	assert.EqualValues(t, 2, f.count("Role"))

	_, err := f.try("Role", query.CreateMany, &query.CreateManyArgs{
		Data: []query.Data{query.Checked{"name": "Manager"}, query.Checked{"name": "Admin"}},
	})
	require.Error(t, err)
	assert.True(t, repairdb.IsUniqueConstraintError(err))
	// The batch is atomic.
	assert.EqualValues(t, 2, f.count("Role"))

	resp = f.exec("Role", query.CreateManyAndReturn, &query.CreateManyArgs{
		Data: []query.Data{query.Checked{"name": "Manager"}, query.Checked{"name": "Clerk"}},
		Projection: query.Projection{Select: &query.Select{Fields: []string{"name"}}},
	})
	require.Len(t, resp.Records, 2)
	assert.Equal(t, []string{"Manager", "Clerk"}, names(resp.Records, "name"))
	assert.False(t, resp.Records[0].Has("id"))
}

func TestEngine_UniqueTarget(t *testing.T) {
	f := newFixture(t)
	_, err := f.try("User", query.CreateOne, &query.CreateArgs{Data: query.Unchecked{
		"name":     "Ada Twin",
		"email":    "ada@example.com",
		"password": "x",
		"roleId":   f.role,
	}})
	require.Error(t, err)
	var known *repairdb.KnownRequestError
	require.True(t, errors.As(err, &known))
	assert.Equal(t, repairdb.CodeUniqueConstraint, known.Code)
	assert.Equal(t, []string{"email"}, known.Meta["target"])
	assert.Equal(t, "User", known.Model)
}

func TestEngine_Projection(t *testing.T) {
	f := newFixture(t)
	where := query.Unique{Field: "email", Value: "ada@example.com"}

	_, err := f.try("User", query.FindUnique, &query.UniqueArgs{Where: where, Projection: query.Projection{
		Select:  &query.Select{Fields: []string{"name"}},
		Include: map[string]*query.Query{"role": nil},
	}})
	require.Error(t, err)
	assert.True(t, repairdb.IsValidationError(err))

	resp := f.exec("User", query.FindUnique, &query.UniqueArgs{Where: where, Projection: query.Projection{
		Select: &query.Select{
			Fields:    []string{"name"},
			Relations: map[string]*query.Query{"role": {Projection: query.Projection{Select: &query.Select{Fields: []string{"name"}}}}},
		},
	}})
	assert.Equal(t, query.Record{"name": "Ada", "role": query.Record{"name": "Technician"}}, resp.Record)

	resp = f.exec("User", query.FindUnique, &query.UniqueArgs{Where: where, Projection: query.Projection{
		Omit:  map[string]bool{"password": true},
		Count: []string{"printers"},
	}})
	assert.False(t, resp.Record.Has("password"))
	assert.True(t, resp.Record.Has("email"))
	assert.EqualValues(t, 1, resp.Record.Counts().Int("printers"))

	// Empty to-many relations are empty lists, missing to-one relations nil.
	resp = f.exec("RepairRequest", query.FindUnique, &query.UniqueArgs{Where: byID(f.request), Projection: query.Projection{
		Include: map[string]*query.Query{"repairParts": nil, "shipping": nil},
	}})
	parts, ok := resp.Record.Many("repairParts")
	require.True(t, ok)
	assert.Empty(t, parts)
	assert.NotNil(t, parts)
	shipping, ok := resp.Record.One("shipping")
	assert.True(t, ok)
	assert.Nil(t, shipping)
}

func TestEngine_GlobalOmit(t *testing.T) {
	f := newFixture(t, WithGlobalOmit("User", "password"))
	resp := f.exec("User", query.FindMany, &query.Query{})
	require.Len(t, resp.Records, 1)
	assert.False(t, resp.Records[0].Has("password"))

	resp = f.exec("User", query.FindMany, &query.Query{Projection: query.Projection{Omit: map[string]bool{"password": false}}})
	assert.Equal(t, "s3cret", resp.Records[0].String("password"))

	resp = f.exec("User", query.FindMany, &query.Query{Projection: query.Projection{Select: &query.Select{Fields: []string{"password"}}}})
	assert.Equal(t, "s3cret", resp.Records[0].String("password"))
}

func TestEngine_NestedCreate(t *testing.T) {
	f := newFixture(t)
	resp := f.exec("RepairRequest", query.CreateOne, &query.CreateArgs{
		Data: query.Checked{
			"description": "Toner leak",
			"accessories": "Power cable",
			"printer":     query.ConnectNested(byID(f.printer)),
			"status": query.Nested{ConnectOrCreate: []query.ConnectOrCreate{{
				Where:  query.Unique{Field: "name", Value: "Diagnosing"},
				Create: query.Checked{"name": "Diagnosing"},
			}}},
			"repairParts": query.CreateNested(
				query.Checked{"partName": "Toner", "quantity": 1, "price": 49.5},
				query.Checked{"partName": "Drum", "quantity": 2, "price": 80.0},
			),
			"notes": query.CreateNested(query.Checked{"note": "Customer called", "user": query.ConnectNested(byID(f.user))}),
		},
		Projection: query.Projection{Include: map[string]*query.Query{
			"repairParts": {OrderBy: []query.Order{query.Asc("partName")}},
			"status":      nil,
			"notes":       nil,
		}},
	})
	rec := resp.Record
	assert.Equal(t, "Power cable", rec.String("accessories"))
	parts, _ := rec.Many("repairParts")
	require.Len(t, parts, 2)
	assert.Equal(t, []string{"Drum", "Toner"}, names(parts, "partName"))
	assert.Equal(t, rec.Int("id"), parts[0].Int("repairRequestId"))
	assert.EqualValues(t, 2, parts[0].Int("quantity"))
	assert.InDelta(t, 49.5, parts[1].Float("price"), 1e-9)
	status, _ := rec.One("status")
	assert.Equal(t, "Diagnosing", status.String("name"))
	notes, _ := rec.Many("notes")
	require.Len(t, notes, 1)
	assert.Equal(t, f.user, notes[0].Int("userId"))
	assert.False(t, rec.Time("createdAt").IsZero())
	assert.False(t, rec.Time("updatedAt").Before(rec.Time("createdAt")))

	// connectOrCreate found the status the second time.
	f.create("RepairRequest", query.Checked{
		"description": "Noise",
		"printer":     query.ConnectNested(byID(f.printer)),
		"status": query.Nested{ConnectOrCreate: []query.ConnectOrCreate{{
			Where:  query.Unique{Field: "name", Value: "Diagnosing"},
			Create: query.Checked{"name": "Diagnosing"},
		}}},
	})
	assert.EqualValues(t, 2, f.count("RepairStatus"))

	// Connecting a missing record fails the whole create.
	_, err := f.try("RepairRequest", query.CreateOne, &query.CreateArgs{Data: query.Checked{
		"description": "Ghost",
		"printer":     query.ConnectNested(byID(9999)),
		"status":      query.ConnectNested(byID(f.status)),
		"repairParts": query.CreateNested(query.Checked{"partName": "Fuser", "quantity": 1, "price": 1.0}),
	}})
	assert.True(t, repairdb.IsNotFound(err))
	assert.EqualValues(t, 2, f.count("RepairPart"))

	// Checked data must not set foreign keys.
	_, err = f.try("RepairRequest", query.CreateOne, &query.CreateArgs{Data: query.Checked{
		"description": "Bad",
		"printerId":   f.printer,
		"status":      query.ConnectNested(byID(f.status)),
	}})
	assert.True(t, repairdb.IsValidationError(err))
}

func TestEngine_ForeignKeys(t *testing.T) {
	f := newFixture(t)
	_, err := f.try("Role", query.DeleteOne, &query.DeleteArgs{Where: byID(f.role)})
	require.Error(t, err)
	assert.True(t, repairdb.IsForeignKeyConstraintError(err))
	assert.Equal(t, repairdb.CodeForeignKeyConstraint, knownCode(t, err))
	assert.EqualValues(t, 1, f.count("Role"))

	// The user still owns a printer.
	_, err = f.try("User", query.DeleteOne, &query.DeleteArgs{Where: byID(f.user)})
	assert.True(t, repairdb.IsForeignKeyConstraintError(err))

	_, err = f.try("RepairPart", query.CreateOne, &query.CreateArgs{Data: query.Unchecked{
		"repairRequestId": 4242, "partName": "Fuser", "quantity": 1, "price": 1.0,
	}})
	assert.True(t, repairdb.IsForeignKeyConstraintError(err))

	f.exec("RepairRequest", query.DeleteOne, &query.DeleteArgs{Where: byID(f.request)})
	f.exec("Printer", query.DeleteOne, &query.DeleteArgs{Where: byID(f.printer)})
	resp := f.exec("User", query.DeleteOne, &query.DeleteArgs{Where: byID(f.user)})
	assert.Equal(t, "Ada", resp.Record.String("name"))
	f.exec("Role", query.DeleteOne, &query.DeleteArgs{Where: byID(f.role)})
	assert.Zero(t, f.count("Role"))

	_, err = f.try("Role", query.DeleteOne, &query.DeleteArgs{Where: byID(f.role)})
	assert.True(t, repairdb.IsNotFound(err))
}

func TestEngine_Upsert(t *testing.T) {
	f := newFixture(t)
	args := &query.UpsertArgs{
		Where:  query.Unique{Field: "name", Value: "Shipped"},
		Create: query.Checked{"name": "Shipped"},
		Update: query.Checked{"name": "Shipped"},
	}
	first := f.exec("RepairStatus", query.UpsertOne, args).Record
	second := f.exec("RepairStatus", query.UpsertOne, args).Record
	assert.Equal(t, first.Int("id"), second.Int("id"))
	assert.EqualValues(t, 1, f.count("RepairStatus", query.FieldEQ("name", "Shipped")))
	assert.EqualValues(t, 2, f.count("RepairStatus"))
}

// staleReads hides the rows of the next filtered read of table inside a
// transaction, as if another writer inserted them right after the read.
type staleReads struct {
	dialect.Driver
	table string
	hide  int
}

func (d *staleReads) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &staleTx{Tx: tx, d: d}, nil
}

type staleTx struct {
	dialect.Tx
	d *staleReads
}

func (tx *staleTx) Query(ctx context.Context, query string, args, v any) error {
	if tx.d.hide > 0 && strings.Contains(query, tx.d.table) && strings.Contains(query, "WHERE") {
		tx.d.hide--
		query = strings.Replace(query, "WHERE", "WHERE 1 = 0 AND", 1)
	}
	return tx.Tx.Query(ctx, query, args, v)
}

func TestEngine_UpsertLostRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drv := &staleReads{Driver: f.drv, table: `"repair_statuses"`}
	e := NewEngine(f.e.Graph(), drv)
	args := &query.UpsertArgs{
		Where:  query.Unique{Field: "name", Value: "Pending"},
		Create: query.Checked{"name": "Pending"},
		Update: query.Checked{"name": "Waiting for parts"},
	}
	req := query.Request{Model: "RepairStatus", Action: query.UpsertOne, Args: args}

	drv.hide = 1
	resp, err := e.Execute(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, drv.hide)
	assert.Equal(t, f.status, resp.Record.Int("id"))
	assert.Equal(t, "Waiting for parts", resp.Record.String("name"))
	assert.EqualValues(t, 1, f.count("RepairStatus"))

	args.Where.Value, args.Create = "Waiting for parts", query.Checked{"name": "Waiting for parts"}
	tx, err := e.BeginTx(ctx, nil)
	require.NoError(t, err)
	drv.hide = 1
	_, err = tx.Execute(ctx, req)
	assert.True(t, repairdb.IsUniqueConstraintError(err))
	require.NoError(t, tx.Rollback())
}

func TestEngine_TransactionRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.e.BeginTx(ctx, nil)
	require.NoError(t, err)
	assert.True(t, tx.InTx())
	_, err = tx.BeginTx(ctx, nil)
	assert.ErrorIs(t, err, repairdb.ErrTxStarted)

	shipping := func() query.Request {
		return query.Request{Model: "Shipping", Action: query.CreateOne, Args: &query.CreateArgs{Data: query.Unchecked{
			"repairRequestId": f.request,
			"courier":         "DHL",
			"trackingNumber":  "TRK-1",
			"status":          "In transit",
		}}}
	}
	_, err = tx.Execute(ctx, shipping())
	require.NoError(t, err)
	_, err = tx.Execute(ctx, shipping())
	require.Error(t, err)
	assert.True(t, repairdb.IsUniqueConstraintError(err))
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Rollback())
	assert.ErrorIs(t, tx.Commit(), sql.ErrTxDone)
	assert.Zero(t, f.count("Shipping"))

	tx, err = f.e.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.Execute(ctx, shipping())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.EqualValues(t, 1, f.count("Shipping"))
}

func TestEngine_Filters(t *testing.T) {
	f := newFixture(t)
	grace := f.create("User", query.Checked{
		"name":     "Grace",
		"email":    "grace@example.com",
		"password": "x",
		"phone":    "555-0100",
		"role":     query.ConnectNested(byID(f.role)),
		"printers": query.CreateNested(
			query.Checked{"model": "OfficeJet Pro", "serialNumber": "SN-2"},
			query.Checked{"model": "laserjet mini", "serialNumber": "SN-3"},
		),
	})
	f.create("User", query.Checked{
		"name":     "Linus",
		"email":    "linus@example.com",
		"password": "x",
		"role":     query.ConnectNested(byID(f.role)),
	})

	find := func(model string, where ...query.Predicate) []string {
		t.Helper()
		resp := f.exec(model, query.FindMany, &query.Query{Where: where, OrderBy: []query.Order{query.Asc("id")}})
		field := "name"
		if model == "Printer" {
			field = "serialNumber"
		}
		return names(resp.Records, field)
	}
	tests := []struct {
		name  string
		model string
		where []query.Predicate
		want  []string
	}{
		{"equals", "User", []query.Predicate{query.FieldEQ("name", "Grace")}, []string{"Grace"}},
		{"not", "User", []query.Predicate{query.FieldNEQ("name", "Grace")}, []string{"Ada", "Linus"}},
		{"in", "User", []query.Predicate{query.FieldIn("name", "Ada", "Linus")}, []string{"Ada", "Linus"}},
		{"empty in", "User", []query.Predicate{query.FieldIn[string]("name")}, []string{}},
		{"empty notIn", "User", []query.Predicate{query.FieldNotIn[string]("name")}, []string{"Ada", "Grace", "Linus"}},
		{"null", "User", []query.Predicate{query.FieldIsNull("phone")}, []string{"Ada", "Linus"}},
		{"equals null", "User", []query.Predicate{query.FieldEQ("phone", nil)}, []string{"Ada", "Linus"}},
		{"not null", "User", []query.Predicate{query.FieldNotNull("phone")}, []string{"Grace"}},
		{"prefix", "User", []query.Predicate{query.FieldHasPrefix("email", "li")}, []string{"Linus"}},
		{"suffix", "Printer", []query.Predicate{query.FieldHasSuffix("model", "Pro")}, []string{"SN-2"}},
		{"contains", "Printer", []query.Predicate{query.FieldContains("model", "Jet")}, []string{"SN-1", "SN-2"}},
		{"contains fold", "Printer", []query.Predicate{query.Fold(query.FieldContains("model", "laserJET"))}, []string{"SN-1", "SN-3"}},
		{"or", "User", []query.Predicate{query.Or(query.FieldEQ("name", "Ada"), query.FieldEQ("name", "Linus"))}, []string{"Ada", "Linus"}},
		{"NOT", "User", []query.Predicate{query.Not(query.FieldEQ("name", "Ada"), query.FieldEQ("name", "Linus"))}, []string{"Grace"}},
		{"and", "User", []query.Predicate{query.FieldGT("id", f.user), query.FieldLT("id", grace+1)}, []string{"Grace"}},
		{"some", "User", []query.Predicate{query.RelationField("printers").Some(query.Fold(query.FieldContains("model", "laser")))}, []string{"Ada", "Grace"}},
		{"none", "User", []query.Predicate{query.RelationField("printers").None()}, []string{"Linus"}},
		{"every", "User", []query.Predicate{query.RelationField("printers").Every(query.FieldContains("model", "Jet"))}, []string{"Ada", "Linus"}},
		{"is", "Printer", []query.Predicate{query.RelationField("owner").Is(query.FieldEQ("name", "Grace"))}, []string{"SN-2", "SN-3"}},
		{"isNot", "Printer", []query.Predicate{query.RelationField("owner").IsNot(query.FieldEQ("name", "Grace"))}, []string{"SN-1"}},
		{"nested relation", "User", []query.Predicate{query.RelationField("printers").Some(
			query.RelationField("repairRequests").Some(query.FieldContains("description", "jam")),
		)}, []string{"Ada"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, find(tt.model, tt.where...))
		})
	}
}

func TestEngine_Pagination(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"E", "B", "D", "A", "C"} {
		f.create("RepairStatus", query.Checked{"name": name})
	}
	// The seeded status is still referenced.
	letters := []query.Predicate{query.FieldNEQ("name", "Pending")}
	cursor := &query.Unique{Field: "name", Value: "C"}
	byName := []query.Order{query.Asc("name")}
	tests := []struct {
		name string
		q    query.Query
		want []string
	}{
		{"ordered", query.Query{OrderBy: byName}, []string{"A", "B", "C", "D", "E"}},
		{"descending", query.Query{OrderBy: []query.Order{query.Desc("name")}, Take: query.Take(2)}, []string{"E", "D"}},
		{"skip take", query.Query{OrderBy: byName, Skip: 1, Take: query.Take(2)}, []string{"B", "C"}},
		{"cursor", query.Query{OrderBy: byName, Cursor: cursor, Take: query.Take(2)}, []string{"C", "D"}},
		{"cursor skip", query.Query{OrderBy: byName, Cursor: cursor, Skip: 1, Take: query.Take(2)}, []string{"D", "E"}},
		{"cursor backwards", query.Query{OrderBy: byName, Cursor: cursor, Take: query.Take(-2)}, []string{"B", "C"}},
		{"backwards", query.Query{OrderBy: byName, Take: query.Take(-2)}, []string{"D", "E"}},
		{"missing cursor", query.Query{OrderBy: byName, Cursor: &query.Unique{Field: "name", Value: "Z"}, Take: query.Take(2)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.q
			q.Where = letters
			resp := f.exec("RepairStatus", query.FindMany, &q)
			assert.Equal(t, tt.want, names(resp.Records, "name"))
		})
	}

	n := f.exec("RepairStatus", query.Count, &query.CountArgs{Where: letters, OrderBy: byName, Cursor: cursor, Take: query.Take(10)}).Count
	assert.EqualValues(t, 3, n)

	first := f.exec("RepairStatus", query.FindFirst, &query.Query{Where: letters, OrderBy: byName, Take: query.Take(-1)}).Record
	assert.Equal(t, "E", first.String("name"))
}

func TestEngine_Distinct(t *testing.T) {
	f := newFixture(t)
	for _, p := range []struct {
		name string
		qty  int
	}{{"Toner", 1}, {"Drum", 1}, {"Toner", 2}, {"Fuser", 1}, {"Drum", 3}} {
		f.part(f.request, p.name, p.qty, 10)
	}
	resp := f.exec("RepairPart", query.FindMany, &query.Query{
		Distinct: []string{"partName"},
		OrderBy:  []query.Order{query.Asc("id")},
	})
	assert.Equal(t, []string{"Toner", "Drum", "Fuser"}, names(resp.Records, "partName"))

	resp = f.exec("RepairPart", query.FindMany, &query.Query{
		Distinct: []string{"partName"},
		OrderBy:  []query.Order{query.Asc("id")},
		Skip:     1,
		Take:     query.Take(1),
	})
	assert.Equal(t, []string{"Drum"}, names(resp.Records, "partName"))

	// Relation pagination applies per parent.
	resp = f.exec("RepairRequest", query.FindMany, &query.Query{Projection: query.Projection{
		Include: map[string]*query.Query{"repairParts": {
			OrderBy: []query.Order{query.Desc("quantity")},
			Take:    query.Take(2),
		}},
	}})
	parts, _ := resp.Records[0].Many("repairParts")
	require.Len(t, parts, 2)
	assert.EqualValues(t, 3, parts[0].Int("quantity"))
	assert.EqualValues(t, 2, parts[1].Int("quantity"))
}

func TestEngine_Update(t *testing.T) {
	f := newFixture(t)
	id := f.part(f.request, "Toner", 2, 10)
	update := func(d query.Data) query.Record {
		t.Helper()
		return f.exec("RepairPart", query.UpdateOne, &query.UpdateArgs{Where: byID(id), Data: d}).Record
	}
	assert.EqualValues(t, 5, update(query.Checked{"quantity": query.Increment(3)}).Int("quantity"))
	assert.EqualValues(t, 10, update(query.Checked{"quantity": query.Multiply(2)}).Int("quantity"))
	assert.EqualValues(t, 3, update(query.Checked{"quantity": query.Divide(3)}).Int("quantity"))
	assert.EqualValues(t, 2, update(query.Checked{"quantity": query.Decrement(1)}).Int("quantity"))
	rec := update(query.Checked{"price": query.Multiply(1.5), "partName": query.Set("Toner XL")})
	assert.InDelta(t, 15.0, rec.Float("price"), 1e-9)
	assert.Equal(t, "Toner XL", rec.String("partName"))

	_, err := f.try("RepairPart", query.UpdateOne, &query.UpdateArgs{Where: byID(9999), Data: query.Checked{"quantity": 1}})
	assert.True(t, repairdb.IsNotFound(err))

	_, err = f.try("RepairPart", query.UpdateOne, &query.UpdateArgs{Where: byID(id), Data: query.Checked{"partName": query.Increment(1)}})
	assert.True(t, repairdb.IsValidationError(err))
}

func TestEngine_Timestamps(t *testing.T) {
	f := newFixture(t)
	before := f.exec("RepairRequest", query.FindUnique, &query.UniqueArgs{Where: byID(f.request)}).Record
	time.Sleep(5 * time.Millisecond)
	after := f.exec("RepairRequest", query.UpdateOne, &query.UpdateArgs{
		Where: byID(f.request),
		Data:  query.Checked{"description": "Paper jam, tray 2"},
	}).Record
	assert.True(t, after.Time("updatedAt").After(before.Time("updatedAt")))
	assert.True(t, after.Time("createdAt").Equal(before.Time("createdAt")))

	_, err := f.try("RepairRequest", query.UpdateOne, &query.UpdateArgs{
		Where: byID(f.request),
		Data:  query.Checked{"createdAt": time.Now()},
	})
	assert.True(t, repairdb.IsValidationError(err))

	_, err = f.try("RepairRequest", query.UpdateOne, &query.UpdateArgs{
		Where: byID(f.request),
		Data:  query.Checked{"updatedAt": before.Time("createdAt").Add(-time.Hour)},
	})
	require.Error(t, err)
	assert.True(t, repairdb.IsValidationError(err))
	assert.Contains(t, err.Error(), "updatedAt must not be before createdAt")

	now := time.Now()
	_, err = f.try("RepairRequest", query.CreateOne, &query.CreateArgs{Data: query.Unchecked{
		"description": "Backdated",
		"printerId":   f.printer,
		"statusId":    f.status,
		"createdAt":   now,
		"updatedAt":   now.Add(-time.Minute),
	}})
	assert.True(t, repairdb.IsValidationError(err))
	assert.EqualValues(t, 1, f.count("RepairRequest"))
}

func TestEngine_NestedUpdate(t *testing.T) {
	f := newFixture(t)
	toner := f.part(f.request, "Toner", 1, 10)
	drum := f.part(f.request, "Drum", 1, 20)
	shipped := f.create("RepairStatus", query.Checked{"name": "Shipped"})

	upsert := query.Nested{Upsert: []query.NestedUpsert{{
		Create: query.Checked{"courier": "DHL", "trackingNumber": "TRK-1", "status": "Label created"},
		Update: query.Checked{"status": "Delivered"},
	}}}
	include := query.Projection{Include: map[string]*query.Query{"shipping": nil, "repairParts": nil, "status": nil}}
	rec := f.exec("RepairRequest", query.UpdateOne, &query.UpdateArgs{
		Where: byID(f.request),
		Data: query.Checked{
			"status":   query.ConnectNested(query.Unique{Field: "name", Value: "Shipped"}),
			"shipping": upsert,
			"repairParts": query.Nested{
				Update: []query.NestedUpdate{{Where: byID(toner), Data: query.Checked{"quantity": query.Increment(2)}}},
				Delete: []query.Unique{byID(drum)},
			},
		},
		Projection: include,
	}).Record
	assert.Equal(t, shipped, rec.Int("statusId"))
	shipping, _ := rec.One("shipping")
	require.NotNil(t, shipping)
	assert.Equal(t, "Label created", shipping.String("status"))
	parts, _ := rec.Many("repairParts")
	require.Len(t, parts, 1)
	assert.EqualValues(t, 3, parts[0].Int("quantity"))

	rec = f.exec("RepairRequest", query.UpdateOne, &query.UpdateArgs{
		Where:      byID(f.request),
		Data:       query.Checked{"shipping": upsert},
		Projection: include,
	}).Record
	shipping, _ = rec.One("shipping")
	assert.Equal(t, "Delivered", shipping.String("status"))
	assert.EqualValues(t, 1, f.count("Shipping"))

	// Nested writes only reach records related to the parent.
	other := f.create("RepairRequest", query.Checked{
		"description": "Other",
		"printer":     query.ConnectNested(byID(f.printer)),
		"status":      query.ConnectNested(byID(f.status)),
	})
	_, err := f.try("RepairRequest", query.UpdateOne, &query.UpdateArgs{
		Where: byID(other),
		Data:  query.Checked{"repairParts": query.Nested{Delete: []query.Unique{byID(toner)}}},
	})
	assert.True(t, repairdb.IsNotFound(err))
	assert.EqualValues(t, 1, f.count("RepairPart"))
}

func TestEngine_Bulk(t *testing.T) {
	f := newFixture(t)
	for i := range 4 {
		f.part(f.request, fmt.Sprintf("Toner %d", i), 1, 10)
	}
	f.part(f.request, "Drum", 1, 10)
	toner := []query.Predicate{query.FieldHasPrefix("partName", "Toner")}

	resp := f.exec("RepairPart", query.UpdateMany, &query.UpdateManyArgs{Where: toner, Data: query.Checked{"price": 12.5}, Limit: query.Take(3)})
	assert.EqualValues(t, 3, resp.Count)
	assert.EqualValues(t, 3, f.count("RepairPart", query.FieldEQ("price", 12.5)))

	resp = f.exec("RepairPart", query.UpdateManyAndReturn, &query.UpdateManyArgs{Where: toner, Data: query.Checked{"quantity": query.Increment(1)}})
	require.Len(t, resp.Records, 4)
	for _, r := range resp.Records {
		assert.EqualValues(t, 2, r.Int("quantity"))
	}

	resp = f.exec("RepairPart", query.DeleteMany, &query.DeleteManyArgs{Where: toner, Limit: query.Take(1)})
	assert.EqualValues(t, 1, resp.Count)
	resp = f.exec("RepairPart", query.DeleteMany, &query.DeleteManyArgs{})
	assert.EqualValues(t, 4, resp.Count)
	assert.Zero(t, f.count("RepairPart"))

	_, err := f.try("RepairPart", query.UpdateMany, &query.UpdateManyArgs{Data: query.Checked{"quantity": 1}, Limit: query.Take(-1)})
	assert.True(t, repairdb.IsValidationError(err))
}

func TestEngine_Aggregate(t *testing.T) {
	f := newFixture(t)
	empty := f.exec("RepairPart", query.Aggregate, &query.AggregateArgs{Aggregates: query.Aggregates{
		Count: []string{query.CountAll},
		Avg:   []string{"price"},
	}}).Aggregate
	assert.Equal(t, map[string]int64{query.CountAll: 0}, empty.Count)
	assert.Nil(t, empty.Avg["price"])

	f.part(f.request, "Toner", 1, 10)
	f.part(f.request, "Drum", 2, 20)
	f.part(f.request, "Fuser", 3, 30)
	res := f.exec("RepairPart", query.Aggregate, &query.AggregateArgs{Aggregates: query.Aggregates{
		Count: []string{query.CountAll, "partName"},
		Avg:   []string{"price"},
		Sum:   []string{"quantity", "price"},
		Min:   []string{"price", "partName"},
		Max:   []string{"quantity"},
	}}).Aggregate
	assert.EqualValues(t, 3, res.Count[query.CountAll])
	assert.EqualValues(t, 3, res.Count["partName"])
	assert.InDelta(t, 20.0, res.Avg["price"], 1e-9)
	assert.Equal(t, int64(6), res.Sum["quantity"])
	assert.InDelta(t, 60.0, res.Sum["price"], 1e-9)
	assert.InDelta(t, 10.0, res.Min["price"], 1e-9)
	assert.Equal(t, "Drum", res.Min["partName"])
	assert.Equal(t, int64(3), res.Max["quantity"])

	res = f.exec("RepairPart", query.Aggregate, &query.AggregateArgs{
		Where:      []query.Predicate{query.FieldGT("quantity", 1)},
		OrderBy:    []query.Order{query.Desc("quantity")},
		Take:       query.Take(1),
		Aggregates: query.Aggregates{Sum: []string{"quantity"}},
	}).Aggregate
	assert.Equal(t, int64(3), res.Sum["quantity"])

	_, err := f.try("RepairPart", query.Aggregate, &query.AggregateArgs{Aggregates: query.Aggregates{Avg: []string{"partName"}}})
	assert.True(t, repairdb.IsValidationError(err))
}

func TestEngine_GroupBy(t *testing.T) {
	f := newFixture(t)
	other := f.create("RepairRequest", query.Checked{
		"description": "Other",
		"printer":     query.ConnectNested(byID(f.printer)),
		"status":      query.ConnectNested(byID(f.status)),
	})
	f.part(f.request, "Toner", 1, 10)
	f.part(f.request, "Drum", 2, 20)
	f.part(other, "Toner", 5, 10)

	groups := f.exec("RepairPart", query.GroupBy, &query.GroupByArgs{
		By:         []string{"repairRequestId"},
		OrderBy:    []query.Order{query.Asc("repairRequestId")},
		Aggregates: query.Aggregates{Sum: []string{"quantity"}, Count: []string{query.CountAll}},
	}).Groups
	require.Len(t, groups, 2)
	assert.Equal(t, f.request, groups[0].By.Int("repairRequestId"))
	assert.Equal(t, int64(3), groups[0].Sum["quantity"])
	assert.EqualValues(t, 2, groups[0].Count[query.CountAll])
	assert.Equal(t, other, groups[1].By.Int("repairRequestId"))
	assert.Equal(t, int64(5), groups[1].Sum["quantity"])

	groups = f.exec("RepairPart", query.GroupBy, &query.GroupByArgs{
		By:         []string{"repairRequestId"},
		Having:     []query.Predicate{query.Having(query.AggSum, "quantity").GT(4)},
		Aggregates: query.Aggregates{Sum: []string{"quantity"}},
	}).Groups
	require.Len(t, groups, 1)
	assert.Equal(t, other, groups[0].By.Int("repairRequestId"))

	groups = f.exec("RepairPart", query.GroupBy, &query.GroupByArgs{
		By:         []string{"partName"},
		OrderBy:    []query.Order{{Field: "quantity", Direction: query.DirDesc, Aggregate: query.AggSum}},
		Take:       query.Take(1),
		Aggregates: query.Aggregates{Sum: []string{"quantity"}},
	}).Groups
	require.Len(t, groups, 1)
	assert.Equal(t, "Toner", groups[0].By.String("partName"))

	invalid := []*query.GroupByArgs{
		{},
		{By: []string{"partName"}, OrderBy: []query.Order{query.Asc("quantity")}},
		{By: []string{"partName"}, Take: query.Take(1)},
		{By: []string{"partName"}, Having: []query.Predicate{query.FieldGT("quantity", 1)}},
		{By: []string{"partName", "partName"}},
		{By: []string{"nope"}},
	}
	for i, args := range invalid {
		_, err := f.try("RepairPart", query.GroupBy, args)
		assert.True(t, repairdb.IsValidationError(err), "case %d: %v", i, err)
	}
}

func TestEngine_Raw(t *testing.T) {
	f := newFixture(t)
	f.part(f.request, "Toner", 1, 10)
	f.part(f.request, "Drum", 1, 20)
	m := f.e.Graph().Model("RepairPart")
	qty, _ := m.Field("quantity")
	name, _ := m.Field("partName")

	resp := f.exec("", query.ExecuteRaw, sql.NewRaw(
		fmt.Sprintf("UPDATE %s SET %s = %s + ? WHERE %s = ?", m.Table, qty.Column, qty.Column, name.Column), 4, "Toner"))
	assert.EqualValues(t, 1, resp.Count)

	resp = f.exec("", query.QueryRaw, &sql.Raw{
		SQL:  fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s > ? ORDER BY id", name.Column, qty.Column, m.Table, qty.Column),
		Args: []any{0},
	})
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "Toner", resp.Records[0][name.Column])
	assert.EqualValues(t, 5, resp.Records[0][qty.Column])

	_, err := f.try("", query.QueryRaw, sql.NewRaw("SELECT ?"))
	assert.Error(t, err)
}

// mapCache is an in-memory repairdb.Cache counting hits.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if ok {
		c.hits++
	}
	return b, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
	return nil
}

func TestEngine_Cache(t *testing.T) {
	c := &mapCache{data: make(map[string][]byte)}
	f := newFixture(t, WithCache(c, time.Minute))
	ctx := context.Background()
	list := &query.Query{
		OrderBy:    []query.Order{query.Asc("id")},
		Projection: query.Projection{Include: map[string]*query.Query{"repairRequests": nil}},
	}
	first := f.exec("RepairStatus", query.FindMany, list)
	require.Len(t, first.Records, 1)
	second := f.exec("RepairStatus", query.FindMany, list)
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, first.Records, second.Records)
	reqs, _ := second.Records[0].Many("repairRequests")
	require.Len(t, reqs, 1)
	assert.Equal(t, first.Records[0]["repairRequests"], second.Records[0]["repairRequests"])

	// Writes to a related model drop the cached reads embedding it.
	f.exec("RepairRequest", query.UpdateOne, &query.UpdateArgs{Where: byID(f.request), Data: query.Checked{"description": "Changed"}})
	third := f.exec("RepairStatus", query.FindMany, list)
	assert.Equal(t, 1, c.hits)
	reqs, _ = third.Records[0].Many("repairRequests")
	assert.Equal(t, "Changed", reqs[0].String("description"))

	// Reads inside a transaction bypass the cache, commits invalidate it.
	tx, err := f.e.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.Execute(ctx, query.Request{Model: "RepairStatus", Action: query.CreateOne, Args: &query.CreateArgs{Data: query.Checked{"name": "Done"}}})
	require.NoError(t, err)
	resp, err := tx.Execute(ctx, query.Request{Model: "RepairStatus", Action: query.FindMany, Args: list})
	require.NoError(t, err)
	assert.Len(t, resp.Records, 2)
	require.NoError(t, tx.Commit())
	assert.Len(t, f.exec("RepairStatus", query.FindMany, list).Records, 2)
	assert.Equal(t, 1, c.hits)
}
