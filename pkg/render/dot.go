// Package render draws an analysis as a node-link diagram.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/toyz/injgraph/pkg/analysis"
)

// Options configures DOT output
type Options struct {
	// Modules includes module nodes and their edges
	Modules bool
	// Types adds the context type to injectable labels
	Types bool
}

// ToDOT converts an analysis to Graphviz DOT. Providers point at what they
// export with solid edges and at what they import with dashed edges.
func ToDOT(a *analysis.Analysis, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph injgraph {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [fontsize=12];\n")
	buf.WriteString("\n")

	for _, inj := range a.Injectables {
		label := inj.Name
		if opts.Types && inj.Type != "" {
			label += "\n" + inj.Type
		}
		fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse];\n", nodeID(inj.Key), label)
	}
	for _, def := range a.Definitions {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=box];\n", nodeID(def.Key), def.Name)
	}
	if opts.Modules {
		for _, mod := range a.Modules {
			fmt.Fprintf(&buf, "  %q [label=%q, shape=box3d];\n", nodeID(mod.Key), mod.Name)
		}
	}

	buf.WriteString("\n")
	for _, def := range a.Definitions {
		if def.Export != nil {
			writeEdge(&buf, def.Key, def.Export.Key, false)
		}
		for _, imp := range def.Imports {
			writeEdge(&buf, def.Key, imp.Key, true)
		}
	}
	if opts.Modules {
		for _, mod := range a.Modules {
			for _, exp := range mod.Exports {
				writeEdge(&buf, mod.Key, exp.Key, false)
			}
			for _, imp := range mod.Imports {
				writeEdge(&buf, mod.Key, imp.Key, true)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(key string) string {
	return "n" + key
}

func writeEdge(buf *bytes.Buffer, from, to string, dashed bool) {
	if dashed {
		fmt.Fprintf(buf, "  %q -> %q [style=dashed];\n", nodeID(from), nodeID(to))
		return
	}
	fmt.Fprintf(buf, "  %q -> %q;\n", nodeID(from), nodeID(to))
}

// RenderSVG renders a DOT graph to SVG using Graphviz
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
