package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tablespan/internal/server"
	"github.com/matzehuels/tablespan/pkg/cache"
	"github.com/matzehuels/tablespan/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	maxBody int64
	timeout time.Duration
	noCache bool
}

// serveCommand creates the serve command, which runs the HTTP API.
//
// API entries share the configured cache backend with the CLI under a
// separate "api:" key scope.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		maxBody: server.DefaultMaxBodyBytes,
		timeout: server.DefaultTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolve and render API over HTTP",
		Long: `Serve exposes the pipeline over HTTP:

  GET  /healthz      liveness and version
  POST /v1/resolve   {"spans", "table"} -> JSON layout
  POST /v1/render    {"spans", "table", "content", "format", "options"} -> text, json or xlsx`,
		Example: `  tablespan serve --addr :8080`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			addr := opts.addr
			if !cmd.Flags().Changed("addr") && c.config.Server.Addr != "" {
				addr = c.config.Server.Addr
			}

			store, err := c.newCache(ctx, opts.noCache)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(store, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"), c.Logger)
			runner.TTL = c.config.Cache.TTL.Duration
			defer runner.Close()

			srv := server.New(runner, c.Logger,
				server.WithMaxBodyBytes(opts.maxBody),
				server.WithTimeout(opts.timeout),
			)
			ui := c.ui()
			ui.info("Listening on http://%s", addr)
			backend := c.config.Cache.Backend
			if opts.noCache {
				backend = backendNone
			}
			ui.keyValue("cache", backend)
			ui.keyValue("max body", fmt.Sprintf("%d bytes", opts.maxBody))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body size in bytes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}
