package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/repairtrack/repairdb/schema"
)

const queryPkg = "github.com/repairtrack/repairdb/query"

// genFields renders the subpackage of a model: names, columns and typed
// predicate helpers.
func genFields(m *schema.Model) *jen.File {
	f := newFile(pkgName(m))
	f.PackageComment("Package " + pkgName(m) + " holds the field and relation names of the " + m.Name + " model.")

	f.Const().DefsFunc(func(g *jen.Group) {
		g.Comment("Label holds the model name.")
		g.Id("Label").Op("=").Lit(m.Name)
		g.Comment("Table holds the table name of the model in the database.")
		g.Id("Table").Op("=").Lit(m.Table)
		g.Line()
		for _, s := range m.Fields {
			g.Id("Field" + goName(s.Name)).Op("=").Lit(s.Name)
		}
		for _, r := range m.Relations {
			g.Id("Relation" + goName(r.Name)).Op("=").Lit(r.Name)
		}
	})

	f.Comment("Columns holds all SQL columns of the model.")
	f.Var().Id("Columns").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, c := range m.Columns() {
			g.Line().Lit(c)
		}
		g.Line()
	})

	f.Comment("Typed predicate helpers.")
	f.Var().DefsFunc(func(g *jen.Group) {
		for _, s := range m.Fields {
			g.Id(goName(s.Name)).Op("=").Qual(queryPkg, fieldHelper(s)).Call(jen.Id("Field" + goName(s.Name)))
		}
		for _, r := range m.Relations {
			g.Id(goName(r.Name)).Op("=").Qual(queryPkg, "RelationField").Call(jen.Id("Relation" + goName(r.Name)))
		}
	})
	return f
}
