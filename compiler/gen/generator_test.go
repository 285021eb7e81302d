package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairtrack/repairdb/repairschema"
	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

func TestGoName(t *testing.T) {
	tests := map[string]string{
		"id":              "ID",
		"roleId":          "RoleID",
		"repairRequestId": "RepairRequestID",
		"serialNumber":    "SerialNumber",
		"name":            "Name",
		"createdAt":       "CreatedAt",
		"repairParts":     "RepairParts",
	}
	for in, want := range tests {
		assert.Equal(t, want, goName(in), in)
	}
}

func TestRecordGetter(t *testing.T) {
	s := func(typ field.Type, optional bool) *schema.Scalar {
		return &schema.Scalar{Descriptor: &field.Descriptor{Name: "f", Type: typ, Optional: optional}}
	}
	assert.Equal(t, "Int", recordGetter(s(field.TypeInt, false)))
	assert.Equal(t, "IntPtr", recordGetter(s(field.TypeInt, true)))
	assert.Equal(t, "StringPtr", recordGetter(s(field.TypeString, true)))
	assert.Equal(t, "Time", recordGetter(s(field.TypeTime, false)))
	assert.Equal(t, "Float", recordGetter(s(field.TypeFloat, false)))
	assert.Equal(t, "BoolField", fieldHelper(s(field.TypeBool, false)))
	assert.Equal(t, "TimeField", fieldHelper(s(field.TypeTime, true)))
}

func TestGenerate(t *testing.T) {
	g, err := repairschema.Graph()
	require.NoError(t, err)
	dir := t.TempDir()
	err = Generate(context.Background(), g, Config{Dir: dir, Package: "github.com/repairtrack/repairdb/client", Workers: 2})
	require.NoError(t, err)

	read := func(name string) string {
		t.Helper()
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(b)
	}

	for _, m := range g.Models {
		assert.FileExists(t, filepath.Join(dir, pkgName(m)+".go"))
		assert.FileExists(t, filepath.Join(dir, pkgName(m), pkgName(m)+".go"))
	}

	user := read("user.go")
	assert.Contains(t, user, "// "+Header)
	assert.Contains(t, user, "package client")
	assert.Contains(t, user, "type User struct")
	assert.Contains(t, user, "Password string `json:\"-\"`")
	assert.Contains(t, user, "Phone *string `json:\"phone,omitempty\"`")
	assert.Contains(t, user, "func (e *User) QueryRole() *Op[*Role]")
	assert.Contains(t, user, "func (e *User) QueryPrinters(q query.Query) *Op[[]*Printer]")
	assert.Contains(t, user, "password=<sensitive>")
	assert.Contains(t, user, "func (e UserEdges) RoleOrErr() (*Role, error)")
	assert.Contains(t, user, "*Delegate[User]")

	rr := read("repairrequest.go")
	assert.Contains(t, rr, "e.Accessories = rec.StringPtr(repairrequest.FieldAccessories)")
	assert.Contains(t, rr, "queryOne(e.rt, repairrequest.Label, repairrequest.RelationShipping, recordKey{\n\t\tid:   e.ID,\n\t\tread: e.read,\n\t}, scanShipping)")
	assert.Contains(t, rr, "queryOne(e.rt, repairrequest.Label, repairrequest.RelationPrinter, recordKey{\n\t\tfk:   &e.PrinterID,")
	assert.Contains(t, rr, "read: readFields(rec),")
	assert.NotContains(t, rr, `query "github.com/repairtrack/repairdb/query"`)
	assert.Contains(t, rr, "loadedTypes [5]bool")

	fields := read(filepath.Join("repairstatus", "repairstatus.go"))
	assert.Contains(t, fields, "package repairstatus")
	assert.Contains(t, fields, `Table = "repair_statuses"`)
	assert.Regexp(t, `FieldName\s+= "name"`, fields)
	assert.Contains(t, fields, "query.StringField(FieldName)")
	assert.Contains(t, fields, "query.RelationField(RelationRepairRequests)")

	committed := func(name string) string {
		t.Helper()
		b, err := os.ReadFile(filepath.Join("..", "..", "client", name))
		require.NoError(t, err)
		return string(b)
	}
	for _, m := range g.Models {
		for _, name := range []string{pkgName(m) + ".go", filepath.Join(pkgName(m), pkgName(m)+".go")} {
			assert.Equal(t, committed(name), read(name), "client/%s is stale, run go generate ./client", name)
		}
	}

	clients := read("clients.go")
	assert.Contains(t, clients, "type clients struct")
	for _, m := range g.Models {
		assert.Contains(t, clients, "new"+m.Name+"Client(rt)")
	}
	assert.Equal(t, committed("clients.go"), clients)
}

func TestGenerateErrors(t *testing.T) {
	g, err := repairschema.Graph()
	require.NoError(t, err)
	err = Generate(context.Background(), g, Config{Package: "x/client"})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Generate(ctx, g, Config{Dir: t.TempDir(), Package: "x/client"})
	assert.ErrorIs(t, err, context.Canceled)
}

type Label struct{ schema.Schema }

func (Label) Fields() []schema.Field {
	return []schema.Field{field.String("edges")}
}

func TestGenerateCollision(t *testing.T) {
	g, err := schema.NewGraph(Label{})
	require.NoError(t, err)
	err = Generate(context.Background(), g, Config{Dir: t.TempDir(), Package: "x/client"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"edges"`)
}
