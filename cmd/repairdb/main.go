// repairdb manages the database of the repair tracker.
//
//	repairdb [-config repairdb.yaml] migrate [-allow-drop] [-dry-run]
//	repairdb [-config repairdb.yaml] seed
//	repairdb [-config repairdb.yaml] stats [-format text|yaml]
//
// The datasource comes from the configuration file or REPAIRDB_DATABASE_URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/repairtrack/repairdb/client"
	"github.com/repairtrack/repairdb/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "repairdb: %v\n", err)
		os.Exit(1)
	}
}

// commands maps subcommand names to their implementation.
var commands = map[string]func(ctx context.Context, db *client.Client, args []string, out io.Writer) error{
	"migrate": migrate,
	"seed":    seed,
	"stats":   stats,
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("repairdb", flag.ContinueOnError)
	path := fs.String("config", "", "path of the YAML configuration file")
	url := fs.String("url", "", "datasource URL, overrides the configuration")
	verbose := fs.Bool("v", false, "log every statement")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("missing command, want one of migrate, seed or stats")
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts := []client.Option{client.FromConfig(cfg), client.WithLogger(logger)}
	if *url != "" {
		opts = append(opts, client.WithDatasourceURL(*url))
	}
	if *verbose {
		opts = append(opts, client.WithLog(
			client.LogDefinition{Level: client.EventQuery, Emit: client.EmitStdout},
			client.LogDefinition{Level: client.EventWarn, Emit: client.EmitStdout},
			client.LogDefinition{Level: client.EventError, Emit: client.EmitStdout},
		))
	}
	db, err := client.Open(ctx, opts...)
	if err != nil {
		return err
	}
	defer db.Close()
	return cmd(ctx, db, fs.Args()[1:], out)
}
