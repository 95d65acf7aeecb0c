package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/api"
	"github.com/bodypress/bodypress/internal/config"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Start the HTTP API server. Sensor bridges POST captures to it, and
companion apps read entries and context windows from it.

The server binds to loopback by default; it is meant for same-machine
bridges, not the open network. Configuration comes from BODYPRESS_*
environment variables (BODYPRESS_HTTP_ADDR, timeouts) with --addr as
an override.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			srvCfg, err := api.LoadServerConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				srvCfg.Addr = addr
			}

			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			log := daemonLogger("api", verbose)

			router := buildRouter(cfg, store, log)
			gen, windows := buildGenerator(cfg, router, store, log)

			srv := api.NewServer(srvCfg, store, router, windows, gen, log)

			fmt.Printf("bodypress API listening on %s. Press Ctrl-C to stop.\n", srvCfg.Addr)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Handle Ctrl-C gracefully.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides BODYPRESS_HTTP_ADDR)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	return cmd
}
