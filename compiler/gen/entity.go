package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/repairtrack/repairdb/schema"
)

const rootPkg = "github.com/repairtrack/repairdb"

// genEntity renders the entity file of a model: the entity struct, its
// edges, the record conversion, lazy relation loaders and the model client.
func genEntity(cfg *Config, m *schema.Model) *jen.File {
	f := newFile(cfg.name())
	f.ImportName(cfg.subpackage(m), pkgName(m))
	for _, r := range m.Relations {
		f.ImportName(cfg.subpackage(r.Target), pkgName(r.Target))
	}
	genEntityStruct(f, m)
	genEdgesStruct(cfg, f, m)
	genScan(cfg, f, m)
	for _, r := range m.Relations {
		genQueryRelation(cfg, f, m, r)
	}
	genString(f, m)
	genModelClient(cfg, f, m)
	return f
}

func genEntityStruct(f *jen.File, m *schema.Model) {
	f.Commentf("%s is the model entity for the %s schema.", m.Name, m.Name)
	f.Type().Id(m.Name).StructFunc(func(g *jen.Group) {
		g.Id("rt").Op("*").Id("runtime")
		g.Id("read").Map(jen.String()).Bool()
		for _, s := range m.Fields {
			switch {
			case s.Name == schema.IDField:
				g.Comment("ID of the record.")
			case s.Comment != "":
				g.Commentf("%s holds the value of the %q field. %s.", goName(s.Name), s.Name, s.Comment)
			default:
				g.Commentf("%s holds the value of the %q field.", goName(s.Name), s.Name)
			}
			tag := s.Name + ",omitempty"
			if s.Sensitive {
				tag = "-"
			}
			g.Id(goName(s.Name)).Add(goType(s)).Tag(map[string]string{"json": tag})
		}
		g.Comment("Edges holds the relations loaded by include.")
		g.Id("Edges").Id(m.Name + "Edges").Tag(map[string]string{"json": "edges"})
		g.Comment("Count holds the relation counts requested by _count.")
		g.Id("Count").Map(jen.String()).Int64().Tag(map[string]string{"json": "_count,omitempty"})
	})
}

func relationType(r *schema.Relation) jen.Code {
	if r.ToMany() {
		return jen.Index().Op("*").Id(r.Target.Name)
	}
	return jen.Op("*").Id(r.Target.Name)
}

func genEdgesStruct(cfg *Config, f *jen.File, m *schema.Model) {
	name := m.Name + "Edges"
	f.Commentf("%s holds the relations of the %s loaded by include.", name, m.Name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, r := range m.Relations {
			g.Commentf("%s holds the value of the %s relation.", goName(r.Name), r.Name)
			g.Id(goName(r.Name)).Add(relationType(r)).Tag(map[string]string{"json": r.Name + ",omitempty"})
		}
		g.Line()
		g.Id("loadedTypes").Index(jen.Lit(len(m.Relations))).Bool()
	})
	for i, r := range m.Relations {
		f.Commentf("%sOrErr returns the %s value or an error if the relation was not loaded.", goName(r.Name), goName(r.Name))
		f.Func().Params(jen.Id("e").Id(name)).Id(goName(r.Name)+"OrErr").Params().Params(relationType(r), jen.Error()).Block(
			jen.If(jen.Id("e").Dot("loadedTypes").Index(jen.Lit(i))).Block(
				jen.Return(jen.Id("e").Dot(goName(r.Name)), jen.Nil()),
			),
			jen.Return(jen.Nil(), jen.Qual(rootPkg, "NewNotLoadedError").Call(jen.Qual(cfg.subpackage(m), "Relation"+goName(r.Name)))),
		)
	}
}

func genScan(cfg *Config, f *jen.File, m *schema.Model) {
	pkg := cfg.subpackage(m)
	f.Commentf("%s converts a returned record into a %s.", scanFunc(m), m.Name)
	f.Func().Id(scanFunc(m)).Params(jen.Id("rt").Op("*").Id("runtime"), jen.Id("rec").Qual(queryPkg, "Record")).Op("*").Id(m.Name).BlockFunc(func(g *jen.Group) {
		g.If(jen.Id("rec").Op("==").Nil()).Block(jen.Return(jen.Nil()))
		g.Id("e").Op(":=").Op("&").Id(m.Name).Values(jen.Dict{
			jen.Id("rt"):   jen.Id("rt"),
			jen.Id("read"): jen.Id("readFields").Call(jen.Id("rec")),
		})
		for _, s := range m.Fields {
			g.Id("e").Dot(goName(s.Name)).Op("=").Id("rec").Dot(recordGetter(s)).Call(jen.Qual(pkg, "Field"+goName(s.Name)))
		}
		for i, r := range m.Relations {
			edge := jen.Id("e").Dot("Edges").Dot(goName(r.Name))
			loaded := jen.Id("e").Dot("Edges").Dot("loadedTypes").Index(jen.Lit(i)).Op("=").True()
			rel := jen.Qual(pkg, "Relation"+goName(r.Name))
			if r.ToMany() {
				g.If(jen.List(jen.Id("rs"), jen.Id("ok")).Op(":=").Id("rec").Dot("Many").Call(rel), jen.Id("ok")).Block(
					edge.Clone().Op("=").Id("scanAll").Call(jen.Id("rt"), jen.Id("rs"), jen.Id(scanFunc(r.Target))),
					loaded,
				)
				continue
			}
			g.If(jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Id("rec").Dot("One").Call(rel), jen.Id("ok")).Block(
				edge.Clone().Op("=").Id(scanFunc(r.Target)).Call(jen.Id("rt"), jen.Id("r")),
				loaded,
			)
		}
		g.Id("e").Dot("Count").Op("=").Id("counts").Call(jen.Id("rec"))
		g.Return(jen.Id("e"))
	})
}

// relationKey returns the recordKey a lazy loader of r starts from. The
// foreign key is passed for owned relations.
func relationKey(r *schema.Relation) jen.Code {
	d := jen.Dict{
		jen.Id("id"):   jen.Id("e").Dot("ID"),
		jen.Id("read"): jen.Id("e").Dot("read"),
	}
	if r.Owner {
		fk := jen.Id("e").Dot(goName(r.FK.Name))
		if !r.FK.Optional {
			fk = jen.Op("&").Add(fk)
		}
		d[jen.Id("fk")] = fk
	}
	return jen.Id("recordKey").Values(d)
}

func genQueryRelation(cfg *Config, f *jen.File, m *schema.Model, r *schema.Relation) {
	name := "Query" + goName(r.Name)
	key := relationKey(r)
	model := jen.Qual(cfg.subpackage(m), "Label")
	rel := jen.Qual(cfg.subpackage(m), "Relation"+goName(r.Name))
	if r.ToMany() {
		f.Commentf("%s queries the %s relation of the %s. q may narrow, order and paginate the result.", name, r.Name, m.Name)
		f.Func().Params(jen.Id("e").Op("*").Id(m.Name)).Id(name).Params(jen.Id("q").Qual(queryPkg, "Query")).
			Op("*").Id("Op").Types(jen.Index().Op("*").Id(r.Target.Name)).Block(
			jen.Return(jen.Id("queryMany").Call(jen.Id("e").Dot("rt"), model, rel, key, jen.Id("q"), jen.Id(scanFunc(r.Target)))),
		)
		return
	}
	f.Comment(fmt.Sprintf("%s queries the %s relation of the %s.", name, r.Name, m.Name))
	f.Func().Params(jen.Id("e").Op("*").Id(m.Name)).Id(name).Params().
		Op("*").Id("Op").Types(jen.Op("*").Id(r.Target.Name)).Block(
		jen.Return(jen.Id("queryOne").Call(jen.Id("e").Dot("rt"), model, rel, key, jen.Id(scanFunc(r.Target)))),
	)
}

func genString(f *jen.File, m *schema.Model) {
	b := func() *jen.Statement { return jen.Id("builder") }
	f.Comment("String implements the fmt.Stringer interface. Sensitive fields are masked.")
	f.Func().Params(jen.Id("e").Op("*").Id(m.Name)).Id("String").Params().String().BlockFunc(func(g *jen.Group) {
		g.Var().Id("builder").Qual("strings", "Builder")
		g.Add(b()).Dot("WriteString").Call(jen.Lit(m.Name + "("))
		for i, s := range m.Fields {
			label := s.Name + "="
			if i > 0 {
				label = ", " + label
			}
			v := jen.Id("e").Dot(goName(s.Name))
			switch {
			case s.Sensitive:
				g.Add(b()).Dot("WriteString").Call(jen.Lit(label + "<sensitive>"))
			case s.Optional:
				g.If(jen.Id("v").Op(":=").Add(v), jen.Id("v").Op("!=").Nil()).Block(
					b().Dot("WriteString").Call(jen.Lit(label)),
					b().Dot("WriteString").Call(jen.Qual("fmt", "Sprint").Call(jen.Op("*").Id("v"))),
				)
			default:
				g.Add(b()).Dot("WriteString").Call(jen.Lit(label))
				g.Add(b()).Dot("WriteString").Call(jen.Qual("fmt", "Sprint").Call(v))
			}
		}
		g.Add(b()).Dot("WriteByte").Call(jen.LitRune(')'))
		g.Return(b().Dot("String").Call())
	})
}

func genModelClient(cfg *Config, f *jen.File, m *schema.Model) {
	name := m.Name + "Client"
	f.Commentf("%s is the client of the %s model.", name, m.Name)
	f.Type().Id(name).Struct(
		jen.Op("*").Id("Delegate").Types(jen.Id(m.Name)),
	)
	f.Func().Id("new"+name).Params(jen.Id("rt").Op("*").Id("runtime")).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
			jen.Id("Delegate"): jen.Id("newDelegate").Call(jen.Id("rt"), jen.Qual(cfg.subpackage(m), "Label"), jen.Id(scanFunc(m))),
		})),
	)
}
