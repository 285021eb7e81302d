// Package repairschema defines the models of the printer repair tracking
// application.
package repairschema

import "github.com/repairtrack/repairdb/schema"

// Graph resolves every model of the application.
func Graph() (*schema.Graph, error) {
	return schema.NewGraph(
		Role{},
		User{},
		Printer{},
		RepairStatus{},
		RepairRequest{},
		RepairPart{},
		Shipping{},
		Note{},
	)
}
