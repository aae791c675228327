package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/funcplot/pkg/server"
	"github.com/matzehuels/funcplot/pkg/session"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		cfg  server.Config
		cf   cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Sessions hold an expression engine and a viewport in memory and expire after
--session-ttl without use. POST /render renders a complete plot description
and shares the render cache with the CLI.`,
		Example: `  funcplot serve --addr :8080
  funcplot serve --cache-url redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg.Runner = runner
			cfg.Logger = c.Logger
			printInfo(cmd.OutOrStdout(), "Serving the API on %s", addr)
			printDetail(cmd.OutOrStdout(), "Sessions expire after %s idle, at most %d live", cfg.SessionTTL, cfg.MaxSessions)
			return server.New(cfg).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&cfg.SessionTTL, "session-ttl", session.DefaultTTL, "idle time after which a session is dropped")
	cmd.Flags().IntVar(&cfg.MaxSessions, "max-sessions", session.DefaultMaxSessions, "maximum number of live sessions")
	cf.register(cmd)
	return cmd
}
