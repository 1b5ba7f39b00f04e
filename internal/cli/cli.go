// Package cli implements the injgraph command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/toyz/injgraph/internal/config"
	"github.com/toyz/injgraph/internal/utils"
)

const appName = "injgraph"

// CLI holds shared state for all commands
type CLI struct {
	Config      *config.Config
	Diagnostics *utils.DiagnosticSystem

	out    io.Writer
	errOut io.Writer

	verbose   bool
	quiet     bool
	configDir string
	flags     config.Config
}

// New creates a CLI writing results to out and diagnostics to errOut
func New(out, errOut io.Writer) *CLI {
	return &CLI{
		Config:      config.Default(),
		Diagnostics: utils.NewDiagnosticSystemTo(errOut, utils.DiagnosticInfo),
		out:         out,
		errOut:      errOut,
	}
}

// RootCommand creates the root cobra command with all subcommands registered
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "injgraph extracts the dependency-injection graph of a Go module",
		Long: `injgraph imports every package of a Go module, finds the injectables,
provider definitions and provider modules among their exported variables, and
writes the graph as a line-oriented record stream that the other commands can
query, render or serve.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "only show errors")
	flags.StringVar(&c.configDir, "config-dir", ".", "directory holding injgraph.toml and .env")
	flags.StringVarP(&c.flags.ModuleDir, "dir", "C", "", "directory inside the module to analyze")
	flags.StringVar(&c.flags.Root, "root", "", "namespace marker package paths must contain (default: module path)")
	flags.StringVar(&c.flags.GoCommand, "go", "", "go command used to run the harness")

	root.AddCommand(c.extractCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.injectablesCommand())
	root.AddCommand(c.providersCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cleanCommand())

	return root
}

// Execute runs the command line args and reports any failure
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	err := root.ExecuteContext(ctx)
	if err != nil && ctx.Err() == nil {
		NewDiagnosticReporter(c.errOut, c.verbose).ReportError(err)
	}
	return err
}

// setup resolves configuration and diagnostics before any command runs
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	level := utils.DiagnosticInfo
	switch {
	case c.quiet:
		level = utils.DiagnosticError
	case c.verbose:
		level = utils.DiagnosticDebug
	}
	c.Diagnostics = utils.NewDiagnosticSystemTo(c.errOut, level)

	cfg, err := config.Load(c.configDir)
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if changed("dir") {
		cfg.ModuleDir = c.flags.ModuleDir
	}
	if changed("root") {
		cfg.Root = c.flags.Root
	}
	if changed("go") {
		cfg.GoCommand = c.flags.GoCommand
	}
	if changed("output") {
		cfg.Output = c.flags.Output
	}
	if changed("keep") {
		cfg.KeepHarness = c.flags.KeepHarness
	}
	if changed("listen") {
		cfg.Listen = c.flags.Listen
	}
	if changed("cache-size") {
		cfg.CacheSize = c.flags.CacheSize
	}

	c.Config = cfg
	c.Diagnostics.Debug("configuration",
		"module_dir", cfg.ModuleDir,
		"root", cfg.Root,
		"output", cfg.Output,
		"keep_harness", cfg.KeepHarness)
	return cfg.Validate()
}
