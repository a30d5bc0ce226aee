package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/serve"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server that runs simulations and comparisons on request.

API Endpoints:
  GET  /health               Health check
  GET  /api/v1/algorithms    Algorithm keys accepted by /run
  POST /api/v1/run           {"algorithm","quantum","processes"} -> run + metrics
  POST /api/v1/compare       {"quantum","processes"} -> six-algorithm dataset
  GET  /metrics              Prometheus metrics

Examples:
  schedviz serve                  # Listen on the configured address (:7338)
  schedviz serve --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func runServe(ctx context.Context, addr string) error {
	c := currentConfig()
	if addr == "" {
		addr = c.Serve.Addr
	}
	srv, err := serve.New(serve.Config{
		Addr:           addr,
		Quantum:        c.DefaultQuantum,
		Runner:         compare.NewRunner(c.CacheTTL()),
		MaxHorizon:     c.MaxHorizon,
		RequestTimeout: c.RequestTimeout(),
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
