package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/toyz/injgraph/internal/server"
	"github.com/toyz/injgraph/pkg/analysis"
)

func (c *CLI) serveCommand() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		Long: `Serve the analysis as JSON and DOT. The module is extracted on the first
request and cached; pass refresh=true on any request to extract again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := analysis.NewCache(c.Config.CacheSize)
			if err != nil {
				return err
			}

			source := c.Config.ModuleDir
			if input != "" {
				source = input
			}
			load := func(ctx context.Context) (*analysis.Analysis, error) {
				return c.loadAnalysis(ctx, input)
			}

			srv := server.New(cache, source, load, c.Diagnostics)
			err = srv.Run(cmd.Context(), c.Config.Listen)
			if stderrors.Is(err, context.Canceled) {
				c.Diagnostics.Info("Server stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "serve records from a file instead of extracting")
	cmd.Flags().StringVar(&c.flags.Listen, "listen", "", "address to listen on")
	cmd.Flags().IntVar(&c.flags.CacheSize, "cache-size", 0, "number of analyses to keep cached")
	return cmd
}
