package cli

import (
	"github.com/spf13/cobra"

	"sopgen/internal/config"
	"sopgen/internal/endpoint"
	"sopgen/internal/metrics"
	"sopgen/internal/server"
)

type serveOptions struct {
	Addr string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SOP generation endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var m metrics.Metrics = metrics.Noop{}
	if cfg.Server.Metrics {
		m = metrics.NewProm("sopgen", nil)
	}
	e, err := endpoint.FromConfig(cfg, m)
	if err != nil {
		return err
	}
	srv, err := server.New(e, server.Options{
		Addr:          firstNonEmpty(opts.Addr, cfg.Server.Addr),
		Metrics:       m,
		ExposeMetrics: cfg.Server.Metrics,
	})
	if err != nil {
		return err
	}
	return srv.Run(cmd.Context())
}
