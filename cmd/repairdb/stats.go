package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/repairtrack/repairdb/client"
	"github.com/repairtrack/repairdb/query"
)

// report is the output of the stats command.
type report struct {
	Rows    map[string]int64 `yaml:"rows"`
	Queries any              `yaml:"queries"`
}

// stats prints the number of rows of every model, then the statistics
// of the queries it ran.
func stats(ctx context.Context, db *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	format := fs.String("format", "text", "output format: text or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	counts := map[string]*client.Op[int64]{
		"Role":          db.Role.Count(query.CountArgs{}),
		"User":          db.User.Count(query.CountArgs{}),
		"Printer":       db.Printer.Count(query.CountArgs{}),
		"RepairStatus":  db.RepairStatus.Count(query.CountArgs{}),
		"RepairRequest": db.RepairRequest.Count(query.CountArgs{}),
		"RepairPart":    db.RepairPart.Count(query.CountArgs{}),
		"Shipping":      db.Shipping.Count(query.CountArgs{}),
		"Note":          db.Note.Count(query.CountArgs{}),
	}
	rows := make([]int64, len(counts))
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.Sort(names)
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			n, err := counts[name].Exec(ctx)
			rows[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r := report{Rows: make(map[string]int64, len(names)), Queries: db.Stats()}
	for i, name := range names {
		r.Rows[name] = rows[i]
	}
	switch *format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tROWS")
		for i, name := range names {
			fmt.Fprintf(tw, "%s\t%d\n", name, rows[i])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out, db.Stats())
		return nil
	}
	return fmt.Errorf("unknown format %q", *format)
}
