package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbuilder/internal/metrics"
	"github.com/matzehuels/stackbuilder/internal/server"
	"github.com/matzehuels/stackbuilder/pkg/cache"
	"github.com/matzehuels/stackbuilder/pkg/pipeline"
	"github.com/matzehuels/stackbuilder/pkg/session"
)

// serveCommand starts the browser front-end.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		ttl         time.Duration
		maxSessions int
		noMetrics   bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stack builder in the browser",
		Long: `Start an HTTP server with one button per action. Every browser gets its
own stack; sessions live in memory and expire after the idle timeout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Serve
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.SessionTTL = ttl
			}
			if cmd.Flags().Changed("max-sessions") {
				cfg.MaxSessions = maxSessions
			}

			sessions := session.NewManager(
				session.WithTTL(cfg.SessionTTL),
				session.WithMaxSessions(cfg.MaxSessions),
				session.WithStoreOptions(c.Config.StoreOptions()...),
			)

			runner := pipeline.NewRunner(c.newCache(noCache), cache.NewScopedKeyer(nil, "serve"), c.Logger)
			defer runner.Close()

			opts := []server.Option{
				server.WithLogger(c.Logger),
				server.WithRunner(runner),
				server.WithRenderOptions(c.Config.PipelineOptions()),
			}
			if !noMetrics {
				metrics.Register()
				opts = append(opts, server.WithMetrics())
			}

			printInfo("Serving on %s", StyleValue.Render("http://"+cfg.Addr))
			printDetail("session ttl %s, max %d sessions", cfg.SessionTTL, cfg.MaxSessions)
			return server.New(sessions, opts...).ListenAndServe(cmd.Context(), cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().DurationVar(&ttl, "session-ttl", 0, "idle timeout of a session")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "maximum number of live sessions")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
