package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/repairtrack/repairdb/schema"
)

// genClients renders the struct grouping the model clients embedded by
// Client.
func genClients(cfg *Config, g *schema.Graph) *jen.File {
	f := newFile(cfg.name())
	f.Comment("clients holds the model clients.")
	f.Type().Id("clients").StructFunc(func(grp *jen.Group) {
		for _, m := range g.Models {
			grp.Commentf("%s is the client of the %s model.", m.Name, m.Name)
			grp.Id(m.Name).Op("*").Id(m.Name + "Client")
		}
	})
	f.Func().Id("newClients").Params(jen.Id("rt").Op("*").Id("runtime")).Id("clients").Block(
		jen.Return(jen.Id("clients").Values(jen.DictFunc(func(d jen.Dict) {
			for _, m := range g.Models {
				d[jen.Id(m.Name)] = jen.Id("new" + m.Name + "Client").Call(jen.Id("rt"))
			}
		}))),
	)
	return f
}
