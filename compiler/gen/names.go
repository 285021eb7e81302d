package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// goName returns the exported Go identifier of a field or relation
// name, with Go initialisms: "roleId" becomes "RoleID".
func goName(name string) string {
	s := inflect.Camelize(name)
	switch {
	case s == "Id":
		return "ID"
	case strings.HasSuffix(s, "Id"):
		return strings.TrimSuffix(s, "Id") + "ID"
	}
	return s
}

// pkgName returns the subpackage name of a model: "RepairStatus"
// becomes "repairstatus".
func pkgName(m *schema.Model) string {
	return strings.ToLower(m.Name)
}

// scanFunc returns the name of the record conversion of a model.
func scanFunc(m *schema.Model) string {
	return "scan" + m.Name
}

// fieldHelper returns the query helper type of a scalar field.
func fieldHelper(f *schema.Scalar) string {
	switch f.Type {
	case field.TypeInt:
		return "IntField"
	case field.TypeFloat:
		return "FloatField"
	case field.TypeTime:
		return "TimeField"
	case field.TypeBool:
		return "BoolField"
	}
	return "StringField"
}

// recordGetter returns the query.Record accessor reading a field.
func recordGetter(f *schema.Scalar) string {
	var g string
	switch f.Type {
	case field.TypeInt:
		g = "Int"
	case field.TypeFloat:
		g = "Float"
	case field.TypeBool:
		g = "Bool"
	case field.TypeTime:
		g = "Time"
	default:
		g = "String"
	}
	if f.Optional {
		g += "Ptr"
	}
	return g
}

// goType returns the Go type of a scalar field. Optional fields are
// pointers.
func goType(f *schema.Scalar) jen.Code {
	c := jen.Empty()
	if f.Optional {
		c = jen.Op("*")
	}
	switch f.Type {
	case field.TypeInt:
		return c.Int64()
	case field.TypeFloat:
		return c.Float64()
	case field.TypeBool:
		return c.Bool()
	case field.TypeTime:
		return c.Qual("time", "Time")
	}
	return c.String()
}
