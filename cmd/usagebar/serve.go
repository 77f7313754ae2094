package main

import (
	"github.com/janekbaraniewski/usagebar/internal/serve"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve usage over a local HTTP API with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.settingsPath)
			if err != nil {
				return err
			}
			defer a.close()

			metrics := serve.NewMetrics()
			a.poller.OnUpdate(metrics.Observe)

			logger := pslog.Ctx(ctx)
			srv, err := serve.New(serve.Options{
				Addr:      addr,
				Viewer:    a.presenter,
				Refresher: a.poller,
				Metrics:   metrics,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			a.start(ctx)
			logger.Info("serving usage", "addr", srv.Addr())
			return srv.Listen(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", serve.DefaultAddr, "listen address")
	return cmd
}
