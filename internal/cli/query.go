package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/toyz/injgraph/internal/errors"
	"github.com/toyz/injgraph/pkg/analysis"
	"github.com/toyz/injgraph/pkg/render"
)

type queryFlags struct {
	input string
	json  bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.input, "input", "i", "", "read records from a file (- for stdin) instead of extracting")
	cmd.Flags().BoolVar(&q.json, "json", false, "print JSON")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *CLI) injectablesCommand() *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "injectables [query]",
		Short: "List injectables whose name, package or type contains query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.loadAnalysis(cmd.Context(), q.input)
			if err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			found := a.FindInjectables(query)
			if q.json {
				if found == nil {
					found = []*analysis.Injectable{}
				}
				return writeJSON(c.out, found)
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPACKAGE\tTYPE")
			for _, inj := range found {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", inj.Name, inj.Package, inj.Type)
			}
			if err := tw.Flush(); err != nil {
				return errors.WrapOutputError("write", err)
			}
			c.Diagnostics.Verbose("%d of %d injectables match", len(found), len(a.Injectables))
			return nil
		},
	}
	q.register(cmd)
	return cmd
}

// providersReport is the JSON form of the providers command
type providersReport struct {
	Injectable *analysis.Injectable `json:"injectable"`
	Import     string               `json:"import"`
	Selector   string               `json:"selector"`
	Providers  analysis.Providers   `json:"providers"`
	Consumers  analysis.Providers   `json:"consumers"`
}

func (c *CLI) providersCommand() *cobra.Command {
	var q queryFlags
	var pkg string
	cmd := &cobra.Command{
		Use:   "providers <name>",
		Short: "Show which definitions and modules provide an injectable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.loadAnalysis(cmd.Context(), q.input)
			if err != nil {
				return err
			}

			inj, err := c.resolveInjectable(a, args[0], pkg)
			if err != nil {
				return err
			}

			importLine, selector := inj.ImportSnippet()
			report := providersReport{
				Injectable: inj,
				Import:     importLine,
				Selector:   selector,
				Providers:  a.ProvidersOf(inj),
				Consumers:  a.ConsumersOf(inj),
			}
			if q.json {
				return writeJSON(c.out, report)
			}
			return printProviders(c.out, report)
		},
	}
	q.register(cmd)
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package the injectable was discovered in")
	return cmd
}

// resolveInjectable finds name in pkg, or the single injectable called name
// when pkg is empty
func (c *CLI) resolveInjectable(a *analysis.Analysis, name, pkg string) (*analysis.Injectable, error) {
	if pkg != "" {
		inj, ok := a.Lookup(name, pkg)
		if !ok {
			return nil, errors.Newf(errors.UnknownErrorCode, "no injectable %s in %s", name, pkg)
		}
		return inj, nil
	}

	var matches []*analysis.Injectable
	for _, inj := range a.Injectables {
		if inj.Name == name {
			matches = append(matches, inj)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.Newf(errors.UnknownErrorCode, "no injectable named %s", name)
	case 1:
		return matches[0], nil
	default:
		err := errors.Newf(errors.UnknownErrorCode, "%d injectables are named %s", len(matches), name)
		for _, inj := range matches {
			err.WithSuggestion("--package " + inj.Package)
		}
		return nil, err
	}
}

func printProviders(w io.Writer, r providersReport) error {
	fmt.Fprintf(w, "%s (%s)\n", r.Selector, r.Injectable.Type)
	fmt.Fprintf(w, "  %s\n\n", r.Import)

	section := func(title string, p analysis.Providers) {
		fmt.Fprintf(w, "%s:\n", title)
		if p.Len() == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, def := range p.Definitions {
			fmt.Fprintf(w, "  definition %s.%s\n", def.Package, def.Name)
		}
		for _, mod := range p.Modules {
			fmt.Fprintf(w, "  module     %s.%s\n", mod.Package, mod.Name)
		}
	}
	section("Provided by", r.Providers)
	fmt.Fprintln(w)
	section("Imported by", r.Consumers)
	return nil
}

func (c *CLI) dotCommand() *cobra.Command {
	var q queryFlags
	var opts render.Options
	var svg bool
	var output string
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Render the graph as Graphviz DOT or SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.loadAnalysis(cmd.Context(), q.input)
			if err != nil {
				return err
			}

			data := []byte(render.ToDOT(a, opts))
			if svg {
				if data, err = render.RenderSVG(cmd.Context(), string(data)); err != nil {
					return errors.WrapGenerateError("svg", err)
				}
			}

			w, closeOutput, err := c.openOutput(output)
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				closeOutput()
				return errors.WrapOutputError("write", err)
			}
			if err := closeOutput(); err != nil {
				return errors.WrapOutputError("close", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&q.input, "input", "i", "", "read records from a file (- for stdin) instead of extracting")
	cmd.Flags().BoolVar(&opts.Modules, "modules", true, "include provider modules")
	cmd.Flags().BoolVar(&opts.Types, "types", false, "label injectables with their context type")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG with Graphviz instead of printing DOT")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
