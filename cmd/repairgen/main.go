// repairgen renders the typed client of the repair tracker models.
//
//	go run ./cmd/repairgen -dir client -package github.com/repairtrack/repairdb/client
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/repairtrack/repairdb/compiler/gen"
	"github.com/repairtrack/repairdb/repairschema"
)

func main() {
	var cfg gen.Config
	flag.StringVar(&cfg.Dir, "dir", "client", "output directory")
	flag.StringVar(&cfg.Package, "package", "github.com/repairtrack/repairdb/client", "import path of the output directory")
	flag.IntVar(&cfg.Workers, "workers", runtime.GOMAXPROCS(0), "files rendered concurrently")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	g, err := repairschema.Graph()
	if err != nil {
		logger.Error("loading schema", "error", err)
		os.Exit(1)
	}
	if err := gen.Generate(context.Background(), g, cfg); err != nil {
		logger.Error("generating client", "error", err)
		os.Exit(1)
	}
	logger.Info("client generated", "dir", cfg.Dir, "models", len(g.Models))
}
