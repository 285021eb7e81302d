package main

import (
	"context"
	"fmt"
	"io"

	"github.com/repairtrack/repairdb/client"
	"github.com/repairtrack/repairdb/client/repairstatus"
	"github.com/repairtrack/repairdb/client/role"
	"github.com/repairtrack/repairdb/query"
)

var (
	defaultRoles    = []string{"Admin", "Technician", "Customer"}
	defaultStatuses = []string{"Pending", "Diagnosed", "In repair", "Waiting for parts", "Repaired", "Shipped"}
)

// seed upserts the default roles and repair statuses in one batch
// transaction. Running it twice leaves the tables unchanged.
func seed(ctx context.Context, db *client.Client, _ []string, out io.Writer) error {
	var ops []client.Runnable
	for _, name := range defaultRoles {
		ops = append(ops, db.Role.Upsert(query.UpsertArgs{
			Where:  query.Unique{Field: role.FieldName, Value: name},
			Create: query.Checked{role.FieldName: name},
			Update: query.Checked{},
		}))
	}
	for _, name := range defaultStatuses {
		ops = append(ops, db.RepairStatus.Upsert(query.UpsertArgs{
			Where:  query.Unique{Field: repairstatus.FieldName, Value: name},
			Create: query.Checked{repairstatus.FieldName: name},
			Update: query.Checked{},
		}))
	}
	if _, err := db.Transaction(ctx, ops); err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %d roles and %d repair statuses\n", len(defaultRoles), len(defaultStatuses))
	return nil
}
