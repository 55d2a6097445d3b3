package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/observability/metrics"
	"github.com/matzehuels/stateflow/pkg/server"
)

// serveCommand creates the "serve" command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noMetrics, noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := []server.Option{
				server.WithRunner(runner),
				server.WithLayoutConfig(c.cfg.Layout),
				server.WithLogger(c.Logger),
			}
			if c.cfg.Server.Metrics && !noMetrics {
				reg := metrics.NewRegistry()
				reg.Install()
				opts = append(opts, server.WithMetrics(reg.Handler()))
			}

			printInfo("Serving %s diagrams on %s", c.cfg.Store.Backend, StyleLink.Render("http://"+displayAddr(addr)))
			return server.New(st, opts...).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout and render cache")

	return cmd
}

// displayAddr turns a listen address into something clickable.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
