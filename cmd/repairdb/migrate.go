package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/repairtrack/repairdb/client"
	sqlschema "github.com/repairtrack/repairdb/dialect/sql/schema"
)

// migrate creates the missing tables and upgrades the existing ones.
// Dropping tables or columns requires -allow-drop.
func migrate(ctx context.Context, db *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	allowDrop := fs.Bool("allow-drop", false, "allow dropping columns and indexes")
	dryRun := fs.Bool("dry-run", false, "print the planned statements without running them")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var opts []sqlschema.MigrateOption
	if *allowDrop {
		opts = append(opts, sqlschema.WithValidateOptions(sqlschema.AllowDropColumn(), sqlschema.AllowDropIndex()))
	}
	m, err := sqlschema.NewMigrate(db.Driver(), db.Graph(), opts...)
	if err != nil {
		return err
	}
	if *dryRun {
		plan, err := m.Plan(ctx)
		if err != nil {
			return err
		}
		if len(plan.Changes) == 0 {
			fmt.Fprintln(out, "schema is up to date")
			return nil
		}
		for _, c := range plan.Changes {
			fmt.Fprintf(out, "%s;\n", c.Cmd)
		}
		return nil
	}
	if err := m.Create(ctx); err != nil {
		if sqlschema.IsBreakingChange(err) {
			return fmt.Errorf("%w\nrerun with -allow-drop to apply", err)
		}
		return err
	}
	fmt.Fprintln(out, "schema migrated")
	return nil
}
