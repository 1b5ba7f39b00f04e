package harness

import (
	"bytes"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/toyz/injgraph/internal/errors"
)

// FileName is the name of the generated harness source file
const FileName = "main.go"

const harnessSource = `// Code generated by injgraph. DO NOT EDIT.

package main

import (
	"fmt"
	"os"

	"github.com/toyz/injgraph/pkg/graph"
	"github.com/toyz/injgraph/pkg/namespace"
{{range .Targets}}{{if .Symbols}}	{{.Alias}} {{printf "%q" .Path}}
{{else}}	_ {{printf "%q" .Path}}
{{end}}{{end}})

func main() {
	registry := namespace.NewRegistry()
{{range .Targets}}
	registry.Register(namespace.Package{
		Path:      {{printf "%q" .Path}},
		IsPackage: true,
		Load: func() (namespace.Symbols, error) {
			return namespace.Symbols{
{{- $alias := .Alias}}{{range .Symbols}}
				{{printf "%q" .}}: {{$alias}}.{{.}},{{end}}
			}, nil
		},
	})
{{end}}
	walker := namespace.NewWalker(registry, {{printf "%q" .Root}})
	if err := graph.Extract(os.Stdout, walker.Symbols()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
`

var harnessTemplate = template.Must(template.New("harness").Parse(harnessSource))

// Render produces the formatted harness program for targets
func Render(targets []Target, root string) ([]byte, error) {
	data := struct {
		Targets []Target
		Root    string
	}{
		Targets: targets,
		Root:    root,
	}

	var buf bytes.Buffer
	if err := harnessTemplate.Execute(&buf, data); err != nil {
		return nil, errors.WrapTemplateError("harness", "execute", err)
	}

	formatted, err := imports.Process(FileName, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.WrapGenerateError("harness source", err)
	}
	return formatted, nil
}
