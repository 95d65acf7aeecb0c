package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/schedule"
)

func newRunCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the background daemon (scheduled captures + daily entries)",
		Long: `Start the long-running scheduler. It takes a capture every interval
inside the configured day window, and writes yesterday's entry once a
day after the generation hour.

Scheduled captures carry no sensor data of their own; pair the daemon
with "bodypress watch" or the HTTP API if a sensor bridge feeds this
machine.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			log := daemonLogger("run", verbose)

			router := buildRouter(cfg, store, log)
			gen, _ := buildGenerator(cfg, router, store, log)

			sched := schedule.New(cfg, store, journal.Providers{}, gen, log)

			fmt.Printf("bodypress daemon started (%s mode, capture every %dm %02d:00-%02d:00, entries at %02d:00). Press Ctrl-C to stop.\n",
				router.Mode(), cfg.Capture.IntervalMinutes,
				cfg.Capture.DayStartHour, cfg.Capture.DayEndHour, cfg.Generate.Hour)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Handle Ctrl-C gracefully.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\nStopping daemon.")
				cancel()
			}()

			return sched.Run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	return cmd
}
