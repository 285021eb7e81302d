package client_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/client"
	"github.com/repairtrack/repairdb/client/printer"
	"github.com/repairtrack/repairdb/client/repairpart"
	"github.com/repairtrack/repairdb/client/repairrequest"
	"github.com/repairtrack/repairdb/client/repairstatus"
	"github.com/repairtrack/repairdb/client/role"
	"github.com/repairtrack/repairdb/client/shipping"
	"github.com/repairtrack/repairdb/client/user"
	"github.com/repairtrack/repairdb/dialect/sql"
	sqlschema "github.com/repairtrack/repairdb/dialect/sql/schema"
	"github.com/repairtrack/repairdb/query"
)

// openClient returns a client on a migrated in-memory database private
// to the test.
func openClient(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	base := []client.Option{
		client.WithDatasourceURL(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)),
		client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	db, err := client.Open(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	m, err := sqlschema.NewMigrate(db.Driver(), db.Graph())
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background()))
	return db
}

func byID(id int64) query.Unique { return query.Unique{Field: "id", Value: id} }

// fixture holds one repair request and the records it depends on.
type fixture struct {
	role    *client.Role
	user    *client.User
	printer *client.Printer
	status  *client.RepairStatus
	request *client.RepairRequest
}

func seed(t *testing.T, db *client.Client) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{}
	var err error
	f.role, err = db.Role.Create(query.CreateArgs{Data: query.Checked{role.FieldName: "Technician"}}).Exec(ctx)
	require.NoError(t, err)
	f.user, err = db.User.Create(query.CreateArgs{Data: query.Unchecked{
		user.FieldName:     "Ada",
		user.FieldEmail:    "a@x.com",
		user.FieldPassword: "s3cret",
		user.FieldRoleID:   f.role.ID,
	}}).Exec(ctx)
	require.NoError(t, err)
	f.printer, err = db.Printer.Create(query.CreateArgs{Data: query.Unchecked{
		printer.FieldModel:        "LaserJet 4000",
		printer.FieldSerialNumber: "SN1",
		printer.FieldOwnerID:      f.user.ID,
	}}).Exec(ctx)
	require.NoError(t, err)
	f.status, err = db.RepairStatus.Create(query.CreateArgs{Data: query.Checked{repairstatus.FieldName: "Received"}}).Exec(ctx)
	require.NoError(t, err)
	f.request, err = db.RepairRequest.Create(query.CreateArgs{Data: query.Checked{
		repairrequest.FieldDescription: "jam",
		repairrequest.RelationPrinter:  query.ConnectNested(byID(f.printer.ID)),
		repairrequest.RelationStatus:   query.ConnectNested(byID(f.status.ID)),
	}}).Exec(ctx)
	require.NoError(t, err)
	return f
}

// countingEngine records dispatched requests without executing them.
type countingEngine struct {
	calls atomic.Int64
	resp  *query.Response
	err   error
}

func (e *countingEngine) Execute(context.Context, query.Request) (*query.Response, error) {
	e.calls.Add(1)
	if e.resp == nil {
		return &query.Response{}, e.err
	}
	return e.resp, e.err
}

func (e *countingEngine) Begin(context.Context, *sql.TxOptions) (client.TxEngine, error) {
	return nil, errors.New("countingEngine: transactions are not supported")
}

func TestFindUnique(t *testing.T) {
	db := openClient(t)
	f := seed(t, db)
	ctx := context.Background()

	u, err := db.User.FindUnique(query.UniqueArgs{Where: query.Unique{Field: user.FieldEmail, Value: "a@x.com"}}).Exec(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, f.user.ID, u.ID)
	assert.Equal(t, "Ada", u.Name)
	assert.Nil(t, u.Phone)

	lookups := map[string]func() error{
		"Role": func() error {
			v, err := db.Role.FindUnique(query.UniqueArgs{Where: byID(999)}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
		"User": func() error {
			v, err := db.User.FindUnique(query.UniqueArgs{Where: query.Unique{Field: user.FieldEmail, Value: "nobody@x.com"}}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
		"Printer": func() error {
			v, err := db.Printer.FindUnique(query.UniqueArgs{Where: query.Unique{Field: printer.FieldSerialNumber, Value: "SN404"}}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
		"RepairStatus": func() error {
			v, err := db.RepairStatus.FindUnique(query.UniqueArgs{Where: query.Unique{Field: repairstatus.FieldName, Value: "Lost"}}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
		"RepairRequest": func() error {
			v, err := db.RepairRequest.FindUnique(query.UniqueArgs{Where: byID(999)}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
		"RepairPart": func() error {
			v, err := db.RepairPart.FindUnique(query.UniqueArgs{Where: byID(999)}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
		"Shipping": func() error {
			v, err := db.Shipping.FindUnique(query.UniqueArgs{Where: query.Unique{Field: shipping.FieldRepairRequestID, Value: int64(999)}}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
		"Note": func() error {
			v, err := db.Note.FindUnique(query.UniqueArgs{Where: byID(999)}).Exec(ctx)
			assert.Nil(t, v)
			return err
		},
	}
	for model, lookup := range lookups {
		t.Run(model, func(t *testing.T) {
			assert.NoError(t, lookup())
		})
	}

	_, err = db.User.FindUniqueOrThrow(query.UniqueArgs{Where: query.Unique{Field: user.FieldEmail, Value: "nobody@x.com"}}).Exec(ctx)
	require.Error(t, err)
	assert.True(t, repairdb.IsNotFound(err))
	assert.Equal(t, repairdb.CodeRecordNotFound, client.Code(err))
	assert.Contains(t, err.Error(), "Invalid `client.user.findUniqueOrThrow()` invocation")

	_, err = db.Printer.FindFirstOrThrow(query.Query{Where: []query.Predicate{printer.Model.Contains("Inkjet")}}).Exec(ctx)
	assert.ErrorIs(t, err, repairdb.ErrNotFound)

	p, err := db.Printer.FindFirst(query.Query{Where: []query.Predicate{printer.Model.HasPrefix("Laser")}}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SN1", p.SerialNumber)
}

func TestCreateManySkipDuplicates(t *testing.T) {
	db := openClient(t)
	ctx := context.Background()
	statuses := func(names ...string) []query.Data {
		data := make([]query.Data, len(names))
		for i, n := range names {
			data[i] = query.Checked{repairstatus.FieldName: n}
		}
		return data
	}
	n, err := db.RepairStatus.CreateMany(query.CreateManyArgs{Data: statuses("Pending", "Diagnosed")}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = db.RepairStatus.CreateMany(query.CreateManyArgs{Data: statuses("Pending", "Repaired", "Diagnosed"), SkipDuplicates: true}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	total, err := db.RepairStatus.Count(query.CountArgs{}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	_, err = db.RepairStatus.CreateMany(query.CreateManyArgs{Data: statuses("Pending")}).Exec(ctx)
	assert.True(t, repairdb.IsUniqueConstraintError(err))

	created, err := db.RepairStatus.CreateManyAndReturn(query.CreateManyArgs{Data: statuses("Shipped", "Closed")}).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotZero(t, created[0].ID)
	assert.Equal(t, "Closed", created[1].Name)
}

func TestGroupByValidation(t *testing.T) {
	engine := &countingEngine{}
	db, err := client.New(client.WithEngine(engine))
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		args query.GroupByArgs
		want string
	}{
		{
			name: "empty_by",
			args: query.GroupByArgs{Aggregates: query.Aggregates{Count: []string{query.CountAll}}},
			want: "by",
		},
		{
			name: "order_by_outside_by",
			args: query.GroupByArgs{
				By:      []string{repairpart.FieldPartName},
				OrderBy: []query.Order{repairpart.Price.Desc()},
			},
			want: "orderBy",
		},
		{
			name: "having_outside_by",
			args: query.GroupByArgs{
				By:     []string{repairpart.FieldPartName},
				Having: []query.Predicate{repairpart.Quantity.GT(1)},
			},
			want: "having",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := db.RepairPart.GroupBy(tt.args)
			require.Error(t, op.Err())
			assert.True(t, repairdb.IsValidationError(op.Err()))
			assert.Contains(t, op.Err().Error(), tt.want)

			_, err := op.Exec(ctx)
			assert.True(t, repairdb.IsValidationError(err))
			assert.Zero(t, engine.calls.Load())
		})
	}

	op := db.RepairPart.GroupBy(query.GroupByArgs{
		By:         []string{repairpart.FieldPartName},
		OrderBy:    []query.Order{repairpart.PartName.Asc()},
		Having:     []query.Predicate{query.Having(query.AggSum, repairpart.FieldQuantity).GT(1)},
		Aggregates: query.Aggregates{Sum: []string{repairpart.FieldQuantity}},
	})
	assert.NoError(t, op.Err())
}

func TestSelectIncludeExclusive(t *testing.T) {
	engine := &countingEngine{}
	db, err := client.New(client.WithEngine(engine), client.WithErrorFormat(client.ErrorFormatMinimal))
	require.NoError(t, err)
	projection := query.Projection{
		Select:  &query.Select{Fields: []string{repairrequest.FieldDescription}},
		Include: map[string]*query.Query{repairrequest.RelationRepairParts: nil},
	}
	ops := []client.Runnable{
		db.RepairRequest.Create(query.CreateArgs{Data: query.Checked{repairrequest.FieldDescription: "jam"}, Projection: projection}),
		db.RepairRequest.CreateManyAndReturn(query.CreateManyArgs{Data: []query.Data{query.Unchecked{repairrequest.FieldDescription: "jam"}}, Projection: projection}),
		db.RepairRequest.UpdateManyAndReturn(query.UpdateManyArgs{Data: query.Checked{repairrequest.FieldDescription: "jam"}, Projection: projection}),
		db.RepairRequest.Update(query.UpdateArgs{Where: byID(1), Data: query.Checked{repairrequest.FieldDescription: "jam"}, Projection: projection}),
		db.RepairRequest.Upsert(query.UpsertArgs{Where: byID(1), Create: query.Checked{}, Update: query.Checked{}, Projection: projection}),
		db.RepairRequest.Delete(query.DeleteArgs{Where: byID(1), Projection: projection}),
		db.RepairRequest.FindMany(query.Query{Projection: projection}),
	}
	for _, op := range ops {
		err := op.Err()
		require.Error(t, err, op.Request().String())
		assert.True(t, repairdb.IsValidationError(err))
		assert.Contains(t, err.Error(), "choose select or include")
	}
	_, err = db.Transaction(context.Background(), ops)
	assert.True(t, repairdb.IsValidationError(err))
	assert.Zero(t, engine.calls.Load())
}

func TestNestedRepairParts(t *testing.T) {
	db := openClient(t)
	f := seed(t, db)
	ctx := context.Background()
	parts := []query.Data{
		query.Checked{repairpart.FieldPartName: "Toner", repairpart.FieldQuantity: 2, repairpart.FieldPrice: 39.5},
		query.Checked{repairpart.FieldPartName: "Fuser", repairpart.FieldQuantity: 1, repairpart.FieldPrice: 120.0},
		query.Checked{repairpart.FieldPartName: "Roller", repairpart.FieldQuantity: 3, repairpart.FieldPrice: 7.25},
	}
	req, err := db.RepairRequest.Create(query.CreateArgs{Data: query.Checked{
		repairrequest.FieldDescription:    "streaks",
		repairrequest.FieldAccessories:    "power cable",
		repairrequest.RelationPrinter:     query.ConnectNested(byID(f.printer.ID)),
		repairrequest.RelationStatus:      query.ConnectNested(byID(f.status.ID)),
		repairrequest.RelationRepairParts: query.CreateNested(parts...),
	}}).Exec(ctx)
	require.NoError(t, err)
	require.NotNil(t, req.Accessories)
	assert.Equal(t, "power cable", *req.Accessories)

	read := func() *client.RepairRequest {
		r, err := db.RepairRequest.FindUniqueOrThrow(query.UniqueArgs{
			Where: byID(req.ID),
			Projection: query.Projection{Include: map[string]*query.Query{
				repairrequest.RelationRepairParts: {OrderBy: []query.Order{repairpart.ID.Asc()}},
			}},
		}).Exec(ctx)
		require.NoError(t, err)
		return r
	}
	got := read()
	loaded, err := got.Edges.RepairPartsOrErr()
	require.NoError(t, err)
	require.Len(t, loaded, len(parts))
	for i, p := range loaded {
		want := parts[i].Values()
		assert.Equal(t, want[repairpart.FieldPartName], p.PartName)
		assert.EqualValues(t, want[repairpart.FieldQuantity], p.Quantity)
		assert.InDelta(t, want[repairpart.FieldPrice], p.Price, 1e-9)
		assert.Equal(t, req.ID, p.RepairRequestID)
	}
	assert.Equal(t, loaded, read().Edges.RepairParts, "order must be stable")

	_, err = got.Edges.ShippingOrErr()
	assert.True(t, repairdb.IsNotLoaded(err))
}

func TestDeleteReferencedRole(t *testing.T) {
	db := openClient(t)
	f := seed(t, db)
	ctx := context.Background()

	_, err := db.Role.Delete(query.DeleteArgs{Where: byID(f.role.ID)}).Exec(ctx)
	require.Error(t, err)
	assert.True(t, repairdb.IsForeignKeyConstraintError(err))
	assert.Equal(t, repairdb.CodeForeignKeyConstraint, client.Code(err))

	// The user owns a printer with an open repair request, which go first.
	_, err = db.RepairRequest.Delete(query.DeleteArgs{Where: byID(f.request.ID)}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.Printer.Delete(query.DeleteArgs{Where: byID(f.printer.ID)}).Exec(ctx)
	require.NoError(t, err)
	deleted, err := db.User.Delete(query.DeleteArgs{Where: byID(f.user.ID)}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", deleted.Email)
	_, err = db.Role.Delete(query.DeleteArgs{Where: byID(f.role.ID)}).Exec(ctx)
	require.NoError(t, err)

	_, err = db.Role.Delete(query.DeleteArgs{Where: byID(f.role.ID)}).Exec(ctx)
	assert.True(t, repairdb.IsNotFound(err))
}

func TestUpsertRepairStatus(t *testing.T) {
	db := openClient(t)
	ctx := context.Background()
	upsert := func(desc string) *client.RepairStatus {
		s, err := db.RepairStatus.Upsert(query.UpsertArgs{
			Where:  query.Unique{Field: repairstatus.FieldName, Value: "Pending"},
			Create: query.Checked{repairstatus.FieldName: "Pending"},
			Update: query.Checked{repairstatus.FieldName: desc},
		}).Exec(ctx)
		require.NoError(t, err)
		return s
	}
	created := upsert("Pending")
	updated := upsert("Pending")
	assert.Equal(t, created.ID, updated.ID)

	n, err := db.RepairStatus.Count(query.CountArgs{}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = db.RepairStatus.Count(query.CountArgs{Where: []query.Predicate{repairstatus.Name.EQ("Pending")}}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBatchTransactionAtomic(t *testing.T) {
	db := openClient(t)
	f := seed(t, db)
	ctx := context.Background()
	_, err := db.Shipping.Create(query.CreateArgs{Data: query.Unchecked{
		shipping.FieldRepairRequestID: f.request.ID,
		shipping.FieldCourier:         "DHL",
		shipping.FieldTrackingNumber:  "T1",
		shipping.FieldStatus:          "in transit",
	}}).Exec(ctx)
	require.NoError(t, err)

	_, err = db.Transaction(ctx, []client.Runnable{
		db.RepairRequest.Create(query.CreateArgs{Data: query.Unchecked{
			repairrequest.FieldDescription: "no power",
			repairrequest.FieldPrinterID:   f.printer.ID,
			repairrequest.FieldStatusID:    f.status.ID,
		}}),
		db.Shipping.Create(query.CreateArgs{Data: query.Unchecked{
			shipping.FieldRepairRequestID: f.request.ID,
			shipping.FieldCourier:         "UPS",
			shipping.FieldTrackingNumber:  "T2",
			shipping.FieldStatus:          "label created",
		}}),
	})
	require.Error(t, err)
	assert.True(t, repairdb.IsUniqueConstraintError(err))
	assert.Contains(t, err.Error(), "client.shipping.createOne()")

	requests, err := db.RepairRequest.Count(query.CountArgs{}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, requests)
	shippings, err := db.Shipping.Count(query.CountArgs{}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, shippings)

	res, err := db.Transaction(ctx, []client.Runnable{
		db.RepairStatus.Create(query.CreateArgs{Data: query.Checked{repairstatus.FieldName: "Waiting for parts"}}),
		db.RepairRequest.UpdateMany(query.UpdateManyArgs{
			Where: []query.Predicate{repairrequest.PrinterID.EQ(int(f.printer.ID))},
			Data:  query.Checked{repairrequest.FieldDescription: "paper jam"},
		}),
		db.RepairRequest.Count(query.CountArgs{}),
	})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "Waiting for parts", res[0].(*client.RepairStatus).Name)
	assert.EqualValues(t, 1, res[1].(int64))
	assert.EqualValues(t, 1, res[2].(int64))
}

func TestFiltersAndAggregates(t *testing.T) {
	db := openClient(t)
	f := seed(t, db)
	ctx := context.Background()
	_, err := db.RepairPart.CreateMany(query.CreateManyArgs{Data: []query.Data{
		query.Unchecked{repairpart.FieldRepairRequestID: f.request.ID, repairpart.FieldPartName: "Toner", repairpart.FieldQuantity: 2, repairpart.FieldPrice: 40.0},
		query.Unchecked{repairpart.FieldRepairRequestID: f.request.ID, repairpart.FieldPartName: "Toner", repairpart.FieldQuantity: 1, repairpart.FieldPrice: 44.0},
		query.Unchecked{repairpart.FieldRepairRequestID: f.request.ID, repairpart.FieldPartName: "Drum", repairpart.FieldQuantity: 1, repairpart.FieldPrice: 90.0},
	}}).Exec(ctx)
	require.NoError(t, err)

	agg, err := db.RepairPart.Aggregate(query.AggregateArgs{
		Where:      []query.Predicate{repairpart.PartName.EQ("Toner")},
		Aggregates: query.Aggregates{Count: []string{query.CountAll}, Sum: []string{repairpart.FieldQuantity}, Max: []string{repairpart.FieldPrice}},
	}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, agg.Count[query.CountAll])
	assert.EqualValues(t, 3, agg.Sum[repairpart.FieldQuantity])
	assert.InDelta(t, 44.0, agg.Max[repairpart.FieldPrice], 1e-9)

	groups, err := db.RepairPart.GroupBy(query.GroupByArgs{
		By:         []string{repairpart.FieldPartName},
		OrderBy:    []query.Order{repairpart.PartName.Asc()},
		Aggregates: query.Aggregates{Sum: []string{repairpart.FieldQuantity}},
	}).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Drum", groups[0].By.String(repairpart.FieldPartName))
	assert.EqualValues(t, 3, groups[1].Sum[repairpart.FieldQuantity])

	parts, err := db.RepairPart.FindMany(query.Query{
		Where: []query.Predicate{query.Or(
			repairpart.Price.GT(85),
			query.And(repairpart.PartName.EqualFold("toner"), repairpart.Quantity.GTE(2)),
		)},
		OrderBy: []query.Order{repairpart.Price.Desc()},
	}).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "Drum", parts[0].PartName)
	assert.EqualValues(t, 2, parts[1].Quantity)

	requests, err := db.RepairRequest.FindMany(query.Query{
		Where: []query.Predicate{repairrequest.RepairParts.Some(repairpart.PartName.EQ("Drum"))},
		Projection: query.Projection{Count: []string{repairrequest.RelationRepairParts}},
	}).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.EqualValues(t, 3, requests[0].Count[repairrequest.RelationRepairParts])

	n, err := db.RepairPart.UpdateMany(query.UpdateManyArgs{
		Where: []query.Predicate{repairpart.PartName.EQ("Toner")},
		Data:  query.Checked{repairpart.FieldQuantity: query.Increment(1)},
	}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = db.RepairPart.DeleteMany(query.DeleteManyArgs{Where: []query.Predicate{repairpart.Quantity.GTE(3)}}).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestTableNames(t *testing.T) {
	g := openClient(t).Graph()
	tables := map[string]string{
		"Printer":       printer.Table,
		"RepairPart":    repairpart.Table,
		"RepairRequest": repairrequest.Table,
		"RepairStatus":  repairstatus.Table,
		"Role":          role.Table,
		"Shipping":      shipping.Table,
		"User":          user.Table,
	}
	for model, table := range tables {
		assert.Equal(t, g.Model(model).Table, table, model)
	}
	assert.Equal(t, "repair_statuses", repairstatus.Table)
}

func TestInsensitiveUnicode(t *testing.T) {
	db := openClient(t)
	f := seed(t, db)
	ctx := context.Background()
	_, err := db.RepairRequest.Update(query.UpdateArgs{
		Where: byID(f.request.ID),
		Data:  query.Checked{repairrequest.FieldDescription: "ÉCRAN cassé"},
	}).Exec(ctx)
	require.NoError(t, err)

	tests := map[string]struct {
		pred query.Predicate
		want int64
	}{
		"contains":     {repairrequest.Description.ContainsFold("écran"), 1},
		"equals":       {repairrequest.Description.EqualFold("écran CASSÉ"), 1},
		"in":           {query.Fold(repairrequest.Description.In("écran cassé", "toner")), 1},
		"not equals":   {query.Fold(repairrequest.Description.NEQ("Écran Cassé")), 0},
		"ascii":        {repairrequest.Description.ContainsFold("CRAN"), 1},
		"case matters": {repairrequest.Description.Contains("écran"), 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			n, err := db.RepairRequest.Count(query.CountArgs{Where: []query.Predicate{tt.pred}}).Exec(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestUserOmitAndString(t *testing.T) {
	db := openClient(t, client.WithOmit("User", user.FieldPassword))
	f := seed(t, db)
	ctx := context.Background()

	u, err := db.User.FindUniqueOrThrow(query.UniqueArgs{Where: byID(f.user.ID)}).Exec(ctx)
	require.NoError(t, err)
	assert.Empty(t, u.Password)

	u, err = db.User.FindUniqueOrThrow(query.UniqueArgs{
		Where:      byID(f.user.ID),
		Projection: query.Projection{Omit: map[string]bool{user.FieldPassword: false}},
	}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", u.Password)
	assert.NotContains(t, u.String(), "s3cret")
	assert.Contains(t, u.String(), "password=<sensitive>")
	assert.Contains(t, u.String(), "email=a@x.com")

	_, err = client.New(client.WithEngine(&countingEngine{}), client.WithOmit("User", "secret"))
	assert.True(t, repairdb.IsInitializationError(err))
}

func TestPanicError(t *testing.T) {
	db, err := client.New(client.WithEngine(panicEngine{}))
	require.NoError(t, err)
	_, err = db.Role.FindMany(query.Query{}).Exec(context.Background())
	require.Error(t, err)
	var pe *repairdb.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "engine exploded", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

type panicEngine struct{}

func (panicEngine) Execute(context.Context, query.Request) (*query.Response, error) {
	panic("engine exploded")
}

func (panicEngine) Begin(context.Context, *sql.TxOptions) (client.TxEngine, error) {
	panic("engine exploded")
}

func TestInitializationError(t *testing.T) {
	t.Setenv("REPAIRDB_DATABASE_URL", "")
	_, err := client.New()
	assert.True(t, repairdb.IsInitializationError(err))

	_, err = client.New(client.WithDatasourceURL("oracle://db"))
	assert.True(t, repairdb.IsInitializationError(err))

	t.Setenv("REPAIRDB_DATABASE_URL", "file:envdb?mode=memory")
	db, err := client.New(client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	assert.NotNil(t, db.Driver())
	require.NoError(t, db.Close())
}

func TestRawQueries(t *testing.T) {
	db := openClient(t)
	f := seed(t, db)
	ctx := context.Background()

	n, err := db.ExecuteRaw(sql.NewRaw("UPDATE printers SET model = ? WHERE serial_number = ?", "LaserJet 4100", "SN1")).Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rows, err := db.QueryRaw(sql.NewRaw("SELECT id, model FROM printers WHERE owner_id = ?", f.user.ID)).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "LaserJet 4100", rows[0].String("model"))

	n, err = db.ExecuteRawUnsafe("DELETE FROM repair_statuses WHERE name = 'Unused'").Exec(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err = db.QueryRawUnsafe("SELECT COUNT(*) AS n FROM roles").Exec(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows[0]["n"])

	_, err = db.QueryRawUnsafe("SELECT * FROM nowhere").Exec(ctx)
	assert.Error(t, err)

	stats := db.Stats()
	assert.Positive(t, stats.TotalQueries)
	assert.Positive(t, stats.TotalExecs)
	assert.Positive(t, stats.Errors)
}
