package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/toyz/injgraph/internal/errors"
	"github.com/toyz/injgraph/internal/harness"
	"github.com/toyz/injgraph/pkg/analysis"
)

// stdio names standard input or output in --input and --output
const stdio = "-"

func (c *CLI) newGenerator() (*harness.Generator, error) {
	return harness.NewGenerator(harness.Options{
		Dir:       c.Config.ModuleDir,
		Root:      c.Config.Root,
		Keep:      c.Config.KeepHarness,
		GoCommand: c.Config.GoCommand,
	}, c.Diagnostics)
}

// extract runs an extraction of the configured module into w
func (c *CLI) extract(ctx context.Context, w io.Writer) (*harness.Result, error) {
	gen, err := c.newGenerator()
	if err != nil {
		return nil, err
	}
	return gen.Extract(ctx, w)
}

// loadAnalysis reads an analysis from input, or extracts one from the
// configured module when input is empty
func (c *CLI) loadAnalysis(ctx context.Context, input string) (*analysis.Analysis, error) {
	switch input {
	case "":
		var buf bytes.Buffer
		if _, err := c.extract(ctx, &buf); err != nil {
			return nil, err
		}
		return analysis.Read("harness", &buf)
	case stdio:
		return analysis.Read("stdin", os.Stdin)
	default:
		f, err := os.Open(input)
		if err != nil {
			return nil, errors.WrapFileSystemError("open", input, err)
		}
		defer f.Close()
		return analysis.Read(input, f)
	}
}

// openOutput returns the destination for path and a function closing it
func (c *CLI) openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == stdio {
		return c.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.WrapFileSystemError("create", path, err)
	}
	return f, f.Close, nil
}

// lineCounter counts the records passing through it
type lineCounter struct {
	w     io.Writer
	lines int
}

func (l *lineCounter) Write(p []byte) (int, error) {
	n, err := l.w.Write(p)
	l.lines += bytes.Count(p[:n], []byte{'\n'})
	return n, err
}

func (c *CLI) extractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the graph and write the record stream",
		Long: `Generate a harness that imports every package of the module, run it, and
write one tab-separated record per injectable, definition and module.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeOutput, err := c.openOutput(c.Config.Output)
			if err != nil {
				return err
			}
			counter := &lineCounter{w: w}

			res, err := c.extract(cmd.Context(), counter)
			if cerr := closeOutput(); err == nil && cerr != nil {
				err = errors.WrapOutputError("close", cerr)
			}
			if err != nil {
				return err
			}

			c.Diagnostics.Success("Extracted %d records", counter.lines)
			c.Diagnostics.Summary("Extraction", map[string]interface{}{
				"packages": len(res.Discovery.Targets),
				"skipped":  len(res.Discovery.Skipped),
				"records":  counter.lines,
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&c.flags.Output, "output", "o", "", "write records to a file instead of stdout")
	cmd.Flags().BoolVar(&c.flags.KeepHarness, "keep", false, "keep the generated harness directory")
	return cmd
}

func (c *CLI) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write the harness program into the module without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := c.newGenerator()
			if err != nil {
				return err
			}
			res, dir, err := gen.WriteHarness(cmd.Context())
			if err != nil {
				return err
			}

			c.Diagnostics.Success("Harness written for %d packages", len(res.Discovery.Targets))
			fmt.Fprintf(c.out, "%s\n", dir)
			c.Diagnostics.Info("Run it from %s with: go run ./%s", gen.Module().Dir, dir)
			return nil
		},
	}
}

func (c *CLI) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove harness directories left in the module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := harness.FindModule(c.Config.ModuleDir)
			if err != nil {
				return err
			}
			removed, err := NewCleaner(module.Dir).Clean()
			for _, dir := range removed {
				c.Diagnostics.List("%s", dir)
			}
			if err != nil {
				return err
			}
			c.Diagnostics.Success("Removed %d harness directories", len(removed))
			return nil
		},
	}
}
