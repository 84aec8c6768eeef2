package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/careboard/careboard/internal/app"
	"github.com/careboard/careboard/internal/logging"
	"github.com/careboard/careboard/internal/web/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Apply pending migrations and serve the web interface until interrupted.

The server shuts down gracefully on SIGINT or SIGTERM: in-flight requests are
drained, then the session store and the database are closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if seed {
				cfg.Seed.OnStart = true
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			applied, err := a.Migrate(ctx)
			if err != nil {
				return err
			}
			logger.Info("schema ready", zap.Int("applied", applied))

			if cfg.Seed.OnStart {
				if _, err := a.Seed(ctx); err != nil {
					return err
				}
			}

			srv, err := a.Server()
			if err != nil {
				return err
			}
			gs := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
				Timeout: cfg.Server.ShutdownTimeout,
				Logger:  logger,
			})
			a.RegisterHooks(gs)

			out := cmd.OutOrStdout()
			color.New(color.FgGreen, color.Bold).Fprintf(out, "careboard listening on http://%s\n", cfg.Address())
			color.New(color.FgHiBlack).Fprintln(out, "Press Ctrl+C to stop")

			return gs.Start(ctx)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "load the demo data into an empty database before serving")
	return cmd
}
