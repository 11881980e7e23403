package cli

import (
	"github.com/spf13/cobra"

	"github.com/mveldt/craftplan/internal/server"
)

// newServeCmd creates the "serve" command: run the HTTP API.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the craftplan HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			a, err := openApp(ctx, *configPath, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			srv := server.New(a.cfg, a.meta, a.market, a.worlds, a.plans, logger)
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
