package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/buildinfo"
	"github.com/matzehuels/mindcanvas/pkg/observability"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
	"github.com/matzehuels/mindcanvas/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Long: `Serve layouts and renders over HTTP, and live editing sessions over
WebSocket at /v1/live. Prometheus metrics are exposed at /metrics unless
server.metrics is off in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := c.newServer(runner)
	printSuccess("mindcanvas %s listening on %s", buildinfo.Version, addr)
	printDetail("cache: %s", cacheLocation(c.Config))

	return srv.ListenAndServe(ctx, addr)
}

// newServer builds the API server. With metrics enabled the Prometheus
// hooks are installed globally and served from their own registry.
func (c *CLI) newServer(runner *pipeline.Runner) *server.Server {
	opts := []server.Option{server.WithLogger(c.Logger), server.WithConfig(c.Config)}
	if c.Config.Server.Metrics {
		reg := prometheus.NewRegistry()
		observability.NewPrometheusHooks(reg).Register()
		opts = append(opts, server.WithGatherer(reg))
	}
	return server.New(runner, opts...)
}
