package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/repairtrack/repairdb/schema"
)

// Header is the first line of every generated file.
const Header = "Code generated by repairgen, DO NOT EDIT."

// Config configures a generation run.
type Config struct {
	// Dir is the output directory of the client package.
	Dir string
	// Package is the import path of the client package, used to import
	// the per-model subpackages.
	Package string
	// Workers limits the files rendered in parallel. Zero means GOMAXPROCS.
	Workers int
}

// name returns the package name of the client package.
func (c *Config) name() string {
	return path.Base(c.Package)
}

// subpackage returns the import path of the subpackage of a model.
func (c *Config) subpackage(m *schema.Model) string {
	return c.Package + "/" + pkgName(m)
}

// file is a rendered output file.
type file struct {
	path string // relative to Config.Dir
	gen  func() *jen.File
}

// Generate renders the typed client of every model of g into cfg.Dir.
func Generate(ctx context.Context, g *schema.Graph, cfg Config) error {
	if cfg.Dir == "" || cfg.Package == "" {
		return fmt.Errorf("gen: missing output directory or package path")
	}
	if err := check(g); err != nil {
		return err
	}
	var files []file
	for _, m := range g.Models {
		files = append(files,
			file{path: pkgName(m) + ".go", gen: func() *jen.File { return genEntity(&cfg, m) }},
			file{path: filepath.Join(pkgName(m), pkgName(m)+".go"), gen: func() *jen.File { return genFields(m) }},
		)
	}
	files = append(files, file{path: "clients.go", gen: func() *jen.File { return genClients(&cfg, g) }})

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, f := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return write(filepath.Join(cfg.Dir, f.path), f.gen())
		})
	}
	return eg.Wait()
}

// check rejects graphs the generated code cannot represent.
func check(g *schema.Graph) error {
	for _, m := range g.Models {
		if strings.ToLower(m.Name) == "client" || strings.ToLower(m.Name) == "runtime" {
			return fmt.Errorf("gen: model name %q collides with the client package", m.Name)
		}
		seen := make(map[string]string)
		for _, f := range m.Fields {
			n := goName(f.Name)
			if other, ok := seen[n]; ok {
				return fmt.Errorf("gen: %s fields %q and %q map to the same Go name %s", m.Name, other, f.Name, n)
			}
			seen[n] = f.Name
		}
		for _, r := range m.Relations {
			n := goName(r.Name)
			if other, ok := seen[n]; ok {
				return fmt.Errorf("gen: %s relation %q and field %q map to the same Go name %s", m.Name, r.Name, other, n)
			}
			seen[n] = r.Name
		}
		for _, n := range []string{"Edges", "Count", "Label", "Table", "Columns"} {
			if f, ok := seen[n]; ok {
				return fmt.Errorf("gen: %s name %q collides with the generated %s", m.Name, f, n)
			}
		}
	}
	return nil
}

// write formats a rendered file and writes it to path.
func write(target string, f *jen.File) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return fmt.Errorf("gen: render %s: %w", target, err)
	}
	src, err := imports.Process(target, buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("gen: format %s: %w", target, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("gen: create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, src, 0o644); err != nil {
		return fmt.Errorf("gen: write %s: %w", target, err)
	}
	return nil
}

// newFile starts a file of package pkg. Every imported package is
// registered by name so no import is rendered with a redundant alias.
func newFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(Header)
	f.ImportNames(map[string]string{
		rootPkg:   "repairdb",
		queryPkg:  "query",
		"fmt":     "fmt",
		"strings": "strings",
		"time":    "time",
	})
	return f
}
