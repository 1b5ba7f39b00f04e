// Package harness turns the packages of a Go module into a runnable program
// that imports them, registers their exported variables and extracts the DI
// graph. Go cannot import packages by name at run time, so this generated
// program is what "importing each package" means here.
package harness

import (
	"context"
	"io"
	"path"

	"github.com/toyz/injgraph/internal/utils"
)

// Options configures a Generator
type Options struct {
	// Dir is any directory inside the target module
	Dir string
	// Root is the namespace marker a package path must contain. Defaults to
	// the module path.
	Root string
	// Patterns select packages; defaults to ./...
	Patterns []string
	// Keep leaves the generated harness on disk after running it
	Keep bool
	// GoCommand overrides the go binary
	GoCommand string
}

// Result describes one generated harness
type Result struct {
	Name      string
	Root      string
	Source    []byte
	Discovery *Discovery
}

// Generator discovers packages and produces the harness for one module
type Generator struct {
	module      *Module
	opts        Options
	diagnostics *utils.DiagnosticSystem
}

// NewGenerator resolves the module containing opts.Dir
func NewGenerator(opts Options, diagnostics *utils.DiagnosticSystem) (*Generator, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	module, err := FindModule(opts.Dir)
	if err != nil {
		return nil, err
	}
	if opts.Root == "" {
		opts.Root = module.Path
	}
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Generator{module: module, opts: opts, diagnostics: diagnostics}, nil
}

// Module returns the module being analyzed
func (g *Generator) Module() *Module {
	return g.module
}

// Generate discovers packages and renders the harness source
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	name := NewDirName()
	harnessPath := path.Join(g.module.Path, name)

	g.diagnostics.Verbose("Loading packages of %s", g.module.Path)
	discovery, err := Discover(ctx, g.module.Dir, g.opts.Root, harnessPath, g.opts.Patterns...)
	if err != nil {
		return nil, err
	}

	for _, skipped := range discovery.Skipped {
		g.diagnostics.Debug("skipped package", "path", skipped.Path, "reason", skipped.Reason)
	}
	for _, target := range discovery.Targets {
		g.diagnostics.Debug("target package", "path", target.Path, "symbols", len(target.Symbols))
	}
	if len(discovery.Targets) == 0 {
		g.diagnostics.Warn("No packages under %s contain %q", g.module.Dir, g.opts.Root)
	}

	src, err := Render(discovery.Targets, g.opts.Root)
	if err != nil {
		return nil, err
	}

	return &Result{
		Name:      name,
		Root:      g.opts.Root,
		Source:    src,
		Discovery: discovery,
	}, nil
}

// WriteHarness generates the harness and leaves it in the module
func (g *Generator) WriteHarness(ctx context.Context) (*Result, string, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, "", err
	}
	dir, err := g.runner().Write(res.Name, res.Source)
	if err != nil {
		return nil, "", err
	}
	return res, dir, nil
}

// Extract generates the harness, runs it and streams its records to w
func (g *Generator) Extract(ctx context.Context, w io.Writer) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}

	g.diagnostics.Verbose("Running harness %s", res.Name)
	if err := g.runner().Run(ctx, res.Name, res.Source, w); err != nil {
		return res, err
	}
	return res, nil
}

func (g *Generator) runner() *Runner {
	r := NewRunner(g.module.Dir)
	r.Keep = g.opts.Keep
	if g.opts.GoCommand != "" {
		r.GoCommand = g.opts.GoCommand
	}
	return r
}
